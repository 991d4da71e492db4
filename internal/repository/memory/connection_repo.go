package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jurislink/jurislink/internal/domain"
)

// ConnectionRepo keeps mutual connections in process memory, one entry per
// canonical (sorted) user pair.
type ConnectionRepo struct {
	mu    sync.RWMutex
	pairs map[[2]uuid.UUID]domain.Connection
}

func NewConnectionRepo() *ConnectionRepo {
	return &ConnectionRepo{pairs: make(map[[2]uuid.UUID]domain.Connection)}
}

func pairKey(a, b uuid.UUID) [2]uuid.UUID {
	if a.String() > b.String() {
		a, b = b, a
	}
	return [2]uuid.UUID{a, b}
}

func (r *ConnectionRepo) Create(ctx context.Context, conn *domain.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairs[pairKey(conn.User1ID, conn.User2ID)] = *conn
	return nil
}

func (r *ConnectionRepo) AreConnected(ctx context.Context, user1ID, user2ID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pairs[pairKey(user1ID, user2ID)]
	return ok, nil
}

func (r *ConnectionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var conns []domain.Connection
	for key, conn := range r.pairs {
		if key[0] != userID && key[1] != userID {
			continue
		}
		if key[0] == userID {
			conn.OtherUserID = key[1]
		} else {
			conn.OtherUserID = key[0]
		}
		conns = append(conns, conn)
	}
	return conns, nil
}
