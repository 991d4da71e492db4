package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jurislink/jurislink/internal/domain"
)

type ConnectionRepo struct {
	pool *pgxpool.Pool
}

func NewConnectionRepo(pool *pgxpool.Pool) *ConnectionRepo {
	return &ConnectionRepo{pool: pool}
}

func (r *ConnectionRepo) Create(ctx context.Context, conn *domain.Connection) error {
	query := `
		INSERT INTO connections (id, user1_id, user2_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user1_id, user2_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, conn.ID, conn.User1ID, conn.User2ID, conn.CreatedAt)
	return err
}

func (r *ConnectionRepo) AreConnected(ctx context.Context, user1ID, user2ID uuid.UUID) (bool, error) {
	// Rows are stored in canonical order (user1_id < user2_id).
	if user1ID.String() > user2ID.String() {
		user1ID, user2ID = user2ID, user1ID
	}
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM connections WHERE user1_id = $1 AND user2_id = $2)`,
		user1ID, user2ID,
	).Scan(&exists)
	return exists, err
}

func (r *ConnectionRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	query := `
		SELECT c.id, c.user1_id, c.user2_id, c.created_at,
			CASE WHEN c.user1_id = $1 THEN c.user2_id ELSE c.user1_id END AS other_user_id,
			CASE WHEN c.user1_id = $1 THEN u2.username ELSE u1.username END AS other_username,
			CASE WHEN c.user1_id = $1 THEN u2.display_name ELSE u1.display_name END AS other_display_name
		FROM connections c
		JOIN users u1 ON c.user1_id = u1.id
		JOIN users u2 ON c.user2_id = u2.id
		WHERE c.user1_id = $1 OR c.user2_id = $1
		ORDER BY c.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []domain.Connection
	for rows.Next() {
		var conn domain.Connection
		if err := rows.Scan(
			&conn.ID, &conn.User1ID, &conn.User2ID, &conn.CreatedAt,
			&conn.OtherUserID, &conn.OtherUsername, &conn.OtherDisplayName,
		); err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}
	return conns, rows.Err()
}
