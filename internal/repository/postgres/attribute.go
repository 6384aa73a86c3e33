package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/trader-link/internal/domain"
	"github.com/ignite/trader-link/internal/service/linking"
)

// AttributeRepo implements linking.AttributeStore over the
// entity_attributes table, keyed by (entity_type, entity_id, name).
type AttributeRepo struct{ db *sql.DB }

// NewAttributeRepo creates a Postgres-backed attribute store.
func NewAttributeRepo(db *sql.DB) *AttributeRepo { return &AttributeRepo{db: db} }

func (r *AttributeRepo) Get(ctx context.Context, entityType, entityID, name string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM entity_attributes
		WHERE entity_type = $1 AND entity_id = $2 AND name = $3
	`, entityType, entityID, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", linking.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get attribute %s: %w", name, err)
	}
	return value, nil
}

func (r *AttributeRepo) Set(ctx context.Context, entityType, entityID, name, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO entity_attributes (entity_type, entity_id, name, value, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (entity_type, entity_id, name)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, entityType, entityID, name, value)
	if err != nil {
		return fmt.Errorf("set attribute %s: %w", name, err)
	}
	return nil
}

func (r *AttributeRepo) Delete(ctx context.Context, entityType, entityID, name string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM entity_attributes
		WHERE entity_type = $1 AND entity_id = $2 AND name = $3
	`, entityType, entityID, name)
	if err != nil {
		return fmt.Errorf("delete attribute %s: %w", name, err)
	}
	return nil
}

func (r *AttributeRepo) Find(ctx context.Context, entityType, name string) ([]domain.Attribute, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entity_type, entity_id, name, value FROM entity_attributes
		WHERE entity_type = $1 AND name = $2
		ORDER BY entity_id
	`, entityType, name)
	if err != nil {
		return nil, fmt.Errorf("find attribute %s: %w", name, err)
	}
	defer rows.Close()

	var out []domain.Attribute
	for rows.Next() {
		var a domain.Attribute
		if err := rows.Scan(&a.EntityType, &a.EntityID, &a.Name, &a.Value); err != nil {
			return nil, fmt.Errorf("find attribute %s: scan: %w", name, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find attribute %s: rows: %w", name, err)
	}
	return out, nil
}
