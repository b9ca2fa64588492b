package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"camphub-be/pkg/database"

	"github.com/google/uuid"
)

type PgActivityRepository struct {
	db *database.PostgresDB
}

func NewPgActivityRepository(db *database.PostgresDB) *PgActivityRepository {
	return &PgActivityRepository{db: db}
}

// Insert appends one activity row. Callers treat failures as best-effort.
func (r *PgActivityRepository) Insert(ctx context.Context, entityType, entityID, actorID, activityType string, details map[string]any) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal activity details: %w", err)
	}

	query := `
		INSERT INTO activity_log (id, entity_type, entity_id, actor_id, activity_type, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Pool.Exec(ctx, query, uuid.NewString(), entityType, entityID, actorID, activityType, detailsJSON)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}
