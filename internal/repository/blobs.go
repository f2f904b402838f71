package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveProof stores an uploaded payment-proof image and returns its public
// URL path. Blobs live in a bytea-backed table keyed by a generated object
// name, so proofs survive restarts without an external object store.
func (r *Repository) SaveProof(ctx context.Context, orderID uuid.UUID, contentType string, data []byte) (string, error) {
	key := fmt.Sprintf("payment-proofs/%s/%s", orderID, uuid.New())

	query := `INSERT INTO payment_proofs (key, order_id, content_type, data, created_at)
	          VALUES ($1, $2, $3, $4, NOW())`

	if _, err := r.db.ExecContext(ctx, query, key, orderID, contentType, data); err != nil {
		return "", fmt.Errorf("save payment proof: %w", err)
	}

	return "/storage/" + key, nil
}

// GetProof fetches a stored proof blob by its object key.
func (r *Repository) GetProof(ctx context.Context, key string) (contentType string, data []byte, err error) {
	query := `SELECT content_type, data FROM payment_proofs WHERE key = $1`

	if err := r.db.QueryRowContext(ctx, query, key).Scan(&contentType, &data); err != nil {
		return "", nil, fmt.Errorf("query payment proof: %w", err)
	}
	return contentType, data, nil
}
