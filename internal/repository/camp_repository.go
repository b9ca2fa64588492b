package repository

import (
	"context"
	"fmt"

	"camphub-be/internal/domain"
	"camphub-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PgCampRepository struct {
	db *database.PostgresDB
}

func NewPgCampRepository(db *database.PostgresDB) *PgCampRepository {
	return &PgCampRepository{db: db}
}

func (r *PgCampRepository) GetByID(ctx context.Context, id string) (*domain.Camp, error) {
	var camp domain.Camp
	var inviteTemplate *string

	query := `
		SELECT id, name, owner_id, accepting_members, total_members,
		       total_applications, invite_template, created_at, updated_at
		FROM camps
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&camp.ID,
		&camp.Name,
		&camp.OwnerID,
		&camp.AcceptingMembers,
		&camp.TotalMembers,
		&camp.TotalApplications,
		&inviteTemplate,
		&camp.CreatedAt,
		&camp.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get camp: %w", err)
	}
	if inviteTemplate != nil {
		camp.InviteTemplate = *inviteTemplate
	}
	return &camp, nil
}

func (r *PgCampRepository) IncrementMembers(ctx context.Context, campID string, delta int) error {
	query := `
		UPDATE camps
		SET total_members = GREATEST(total_members + $2, 0), updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query, campID, delta)
	if err != nil {
		return fmt.Errorf("failed to update member count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgCampRepository) IncrementApplications(ctx context.Context, campID string, delta int) error {
	query := `
		UPDATE camps
		SET total_applications = GREATEST(total_applications + $2, 0), updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query, campID, delta)
	if err != nil {
		return fmt.Errorf("failed to update application count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
