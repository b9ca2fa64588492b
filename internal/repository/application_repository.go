package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"camphub-be/internal/domain"
	"camphub-be/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type PgApplicationRepository struct {
	db *database.PostgresDB
}

func NewPgApplicationRepository(db *database.PostgresDB) *PgApplicationRepository {
	return &PgApplicationRepository{db: db}
}

const applicationColumns = `
	id, applicant_id, camp_id, status, application_data, action_history, messages,
	invite_token, reviewed_by, reviewed_at, review_notes, created_at, updated_at`

// Create inserts a new application. The partial unique index on
// (applicant_id, camp_id) over non-terminal rows is the final arbiter for
// duplicate applications; its violation surfaces as ErrDuplicateActive.
func (r *PgApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	dataJSON, err := json.Marshal(app.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal application data: %w", err)
	}
	historyJSON, err := json.Marshal(app.ActionHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal action history: %w", err)
	}
	messagesJSON, err := json.Marshal(app.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	query := `
		INSERT INTO applications (
			id, applicant_id, camp_id, status, application_data, action_history,
			messages, invite_token
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
		RETURNING created_at, updated_at
	`

	err = r.db.Pool.QueryRow(ctx, query,
		app.ID,
		app.ApplicantID,
		app.CampID,
		app.Status,
		dataJSON,
		historyJSON,
		messagesJSON,
		app.InviteToken,
	).Scan(&app.CreatedAt, &app.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_applications_active" {
			return domain.ErrDuplicateActive
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

func (r *PgApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	app, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// GetActive returns the single non-terminal application for the pair, or nil.
func (r *PgApplicationRepository) GetActive(ctx context.Context, applicantID, campID string) (*domain.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE applicant_id = $1 AND camp_id = $2
		  AND status NOT IN ('rejected', 'withdrawn', 'deleted')
	`
	app, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, applicantID, campID))
	if err != nil {
		return nil, fmt.Errorf("failed to get active application: %w", err)
	}
	return app, nil
}

func (r *PgApplicationRepository) ListByApplicant(ctx context.Context, applicantID string) ([]domain.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE applicant_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Pool.Query(ctx, query, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *PgApplicationRepository) ListByCamp(ctx context.Context, campID string, status *domain.Status) ([]domain.Application, error) {
	query := `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE camp_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
	`
	var statusArg any
	if status != nil {
		statusArg = string(*status)
	}
	rows, err := r.db.Pool.Query(ctx, query, campID, statusArg)
	if err != nil {
		return nil, fmt.Errorf("failed to list camp applications: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// UpdateStatus sets the new status, review metadata, and appends one action
// history entry in a single statement so the audit log cannot drift from the
// status column.
func (r *PgApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, reviewedBy, notes string, entry domain.ActionEntry) error {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal action entry: %w", err)
	}

	query := `
		UPDATE applications
		SET status = $2,
		    reviewed_by = $3,
		    reviewed_at = now(),
		    review_notes = $4,
		    action_history = action_history || $5::jsonb,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, status, reviewedBy, notes, entryJSON)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgApplicationRepository) AppendMessage(ctx context.Context, id string, msg domain.Message) error {
	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	query := `
		UPDATE applications
		SET messages = messages || $2::jsonb, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query, id, msgJSON)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ResetActiveToWithdrawn moves every non-terminal application for the pair
// to withdrawn. Idempotent: zero affected rows is a valid outcome.
func (r *PgApplicationRepository) ResetActiveToWithdrawn(ctx context.Context, applicantID, campID string, entry domain.ActionEntry) (int64, error) {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal action entry: %w", err)
	}

	query := `
		UPDATE applications
		SET status = 'withdrawn',
		    action_history = action_history || $3::jsonb,
		    updated_at = now()
		WHERE applicant_id = $1 AND camp_id = $2
		  AND status NOT IN ('rejected', 'withdrawn', 'deleted')
	`
	tag, err := r.db.Pool.Exec(ctx, query, applicantID, campID, entryJSON)
	if err != nil {
		return 0, fmt.Errorf("failed to reset applications: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountActiveBySlot counts non-terminal applications referencing a call slot.
// Used to guard slot deletion.
func (r *PgApplicationRepository) CountActiveBySlot(ctx context.Context, slotID string) (int64, error) {
	var count int64
	query := `
		SELECT COUNT(*)
		FROM applications
		WHERE application_data->>'callSlotId' = $1
		  AND status NOT IN ('rejected', 'withdrawn', 'deleted')
	`
	if err := r.db.Pool.QueryRow(ctx, query, slotID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count slot applications: %w", err)
	}
	return count, nil
}

func (r *PgApplicationRepository) scanOne(row pgx.Row) (*domain.Application, error) {
	var app domain.Application
	var dataJSON, historyJSON, messagesJSON []byte
	var inviteToken, reviewedBy, reviewNotes *string

	err := row.Scan(
		&app.ID,
		&app.ApplicantID,
		&app.CampID,
		&app.Status,
		&dataJSON,
		&historyJSON,
		&messagesJSON,
		&inviteToken,
		&reviewedBy,
		&app.ReviewedAt,
		&reviewNotes,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(dataJSON, &app.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal application data: %w", err)
	}
	if err := json.Unmarshal(historyJSON, &app.ActionHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action history: %w", err)
	}
	if err := json.Unmarshal(messagesJSON, &app.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	if inviteToken != nil {
		app.InviteToken = *inviteToken
	}
	if reviewedBy != nil {
		app.ReviewedBy = *reviewedBy
	}
	if reviewNotes != nil {
		app.ReviewNotes = *reviewNotes
	}

	return &app, nil
}

func (r *PgApplicationRepository) scanMany(rows pgx.Rows) ([]domain.Application, error) {
	var apps []domain.Application
	for rows.Next() {
		app, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}
