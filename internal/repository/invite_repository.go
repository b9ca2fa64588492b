package repository

import (
	"context"
	"fmt"
	"time"

	"camphub-be/internal/domain"
	"camphub-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PgInviteRepository struct {
	db *database.PostgresDB
}

func NewPgInviteRepository(db *database.PostgresDB) *PgInviteRepository {
	return &PgInviteRepository{db: db}
}

const inviteColumns = `
	id, camp_id, token, recipient, method, status, sender_id, message,
	applied_by, applied_at, expires_at, created_at`

func (r *PgInviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	query := `
		INSERT INTO invites (
			id, camp_id, token, recipient, method, status, sender_id, message, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		invite.ID,
		invite.CampID,
		invite.Token,
		invite.Recipient,
		invite.Method,
		invite.Status,
		invite.SenderID,
		invite.Message,
		invite.ExpiresAt,
	).Scan(&invite.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

func (r *PgInviteRepository) GetByID(ctx context.Context, id string) (*domain.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE id = $1`
	invite, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}

func (r *PgInviteRepository) GetByToken(ctx context.Context, campID, token string) (*domain.Invite, error) {
	query := `SELECT ` + inviteColumns + ` FROM invites WHERE camp_id = $1 AND token = $2`
	invite, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, campID, token))
	if err != nil {
		return nil, fmt.Errorf("failed to get invite by token: %w", err)
	}
	return invite, nil
}

// FindOpenByRecipient is the fallback for lost tokens: the most recently
// created pending/sent unexpired invite for the recipient within the camp.
func (r *PgInviteRepository) FindOpenByRecipient(ctx context.Context, campID, recipient string, now time.Time) (*domain.Invite, error) {
	query := `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE camp_id = $1
		  AND recipient = $2
		  AND status IN ('pending', 'sent')
		  AND expires_at > $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	invite, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, campID, recipient, now))
	if err != nil {
		return nil, fmt.Errorf("failed to find invite by recipient: %w", err)
	}
	return invite, nil
}

func (r *PgInviteRepository) ListByCamp(ctx context.Context, campID string, status *domain.InviteStatus) ([]domain.Invite, error) {
	query := `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE camp_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
	`
	var statusArg any
	if status != nil {
		statusArg = string(*status)
	}
	rows, err := r.db.Pool.Query(ctx, query, campID, statusArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []domain.Invite
	for rows.Next() {
		invite, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, *invite)
	}
	return invites, rows.Err()
}

// MarkSent moves a pending invite to sent. Forward-only.
func (r *PgInviteRepository) MarkSent(ctx context.Context, id string) error {
	query := `UPDATE invites SET status = 'sent' WHERE id = $1 AND status = 'pending'`
	tag, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark invite sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInviteFinalized
	}
	return nil
}

// MarkApplied finalizes the invite only while it is still open, so a second
// correlate call for the same application cannot double-mark. Returns false
// when the invite was already finalized.
func (r *PgInviteRepository) MarkApplied(ctx context.Context, id, applicantID string, at time.Time) (bool, error) {
	query := `
		UPDATE invites
		SET status = 'applied', applied_by = $2, applied_at = $3
		WHERE id = $1 AND status IN ('pending', 'sent')
	`
	tag, err := r.db.Pool.Exec(ctx, query, id, applicantID, at)
	if err != nil {
		return false, fmt.Errorf("failed to mark invite applied: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ExpireOverdue flips overdue pending/sent invites to expired. Called
// lazily from list/correlate paths; there is no background reaper.
func (r *PgInviteRepository) ExpireOverdue(ctx context.Context, campID string, now time.Time) (int64, error) {
	query := `
		UPDATE invites
		SET status = 'expired'
		WHERE camp_id = $1 AND status IN ('pending', 'sent') AND expires_at <= $2
	`
	tag, err := r.db.Pool.Exec(ctx, query, campID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire invites: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PgInviteRepository) scanOne(row pgx.Row) (*domain.Invite, error) {
	var invite domain.Invite
	var message, appliedBy *string

	err := row.Scan(
		&invite.ID,
		&invite.CampID,
		&invite.Token,
		&invite.Recipient,
		&invite.Method,
		&invite.Status,
		&invite.SenderID,
		&message,
		&appliedBy,
		&invite.AppliedAt,
		&invite.ExpiresAt,
		&invite.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if message != nil {
		invite.Message = *message
	}
	if appliedBy != nil {
		invite.AppliedBy = *appliedBy
	}
	return &invite, nil
}
