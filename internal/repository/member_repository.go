package repository

import (
	"context"
	"fmt"

	"camphub-be/internal/domain"
	"camphub-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PgMemberRepository struct {
	db *database.PostgresDB
}

func NewPgMemberRepository(db *database.PostgresDB) *PgMemberRepository {
	return &PgMemberRepository{db: db}
}

const memberColumns = `
	id, camp_id, user_id, role, status, applied_at, reviewed_at, reviewed_by,
	created_at, updated_at`

func (r *PgMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (
			id, camp_id, user_id, role, status, applied_at, reviewed_at, reviewed_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		ON CONFLICT (camp_id, user_id) DO UPDATE
		SET role = EXCLUDED.role,
		    status = EXCLUDED.status,
		    reviewed_at = EXCLUDED.reviewed_at,
		    reviewed_by = EXCLUDED.reviewed_by,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		member.ID,
		member.CampID,
		member.UserID,
		member.Role,
		member.Status,
		member.AppliedAt,
		member.ReviewedAt,
		member.ReviewedBy,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (r *PgMemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	member, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

func (r *PgMemberRepository) GetByCampAndUser(ctx context.Context, campID, userID string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE camp_id = $1 AND user_id = $2`
	member, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, campID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get member by user: %w", err)
	}
	return member, nil
}

func (r *PgMemberRepository) ListActiveByCamp(ctx context.Context, campID string) ([]domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE camp_id = $1 AND status = 'active'
		ORDER BY created_at ASC
	`
	rows, err := r.db.Pool.Query(ctx, query, campID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		member, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}

func (r *PgMemberRepository) UpdateStatus(ctx context.Context, id string, status domain.MemberStatus) error {
	query := `UPDATE members SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.db.Pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update member status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgMemberRepository) scanOne(row pgx.Row) (*domain.Member, error) {
	var member domain.Member
	var reviewedBy *string

	err := row.Scan(
		&member.ID,
		&member.CampID,
		&member.UserID,
		&member.Role,
		&member.Status,
		&member.AppliedAt,
		&member.ReviewedAt,
		&reviewedBy,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if reviewedBy != nil {
		member.ReviewedBy = *reviewedBy
	}
	return &member, nil
}
