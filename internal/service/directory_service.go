package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/jurislink/jurislink/internal/repository"
)

// DirectoryService answers whether a user id belongs to a recognized,
// verified party. The relay consults it before promoting a connection to
// joined.
type DirectoryService struct {
	userRepo repository.UserRepository
}

func NewDirectoryService(userRepo repository.UserRepository) *DirectoryService {
	return &DirectoryService{userRepo: userRepo}
}

func (s *DirectoryService) IsRegistered(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user != nil && user.Verified, nil
}
