package repository

import (
	"context"
	"fmt"
	"time"

	"camphub-be/internal/domain"
	"camphub-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PgCallSlotRepository struct {
	db *database.PostgresDB
}

func NewPgCallSlotRepository(db *database.PostgresDB) *PgCallSlotRepository {
	return &PgCallSlotRepository{db: db}
}

const callSlotColumns = `
	id, camp_id, date, start_time, end_time, max_participants,
	current_participants, is_available, participants, created_by,
	created_at, updated_at`

func (r *PgCallSlotRepository) Create(ctx context.Context, slot *domain.CallSlot) error {
	query := `
		INSERT INTO call_slots (
			id, camp_id, date, start_time, end_time, max_participants, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING current_participants, is_available, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		slot.ID,
		slot.CampID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.MaxParticipants,
		slot.CreatedBy,
	).Scan(&slot.CurrentParticipants, &slot.IsAvailable, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create call slot: %w", err)
	}
	if slot.Participants == nil {
		slot.Participants = []string{}
	}
	return nil
}

func (r *PgCallSlotRepository) GetByID(ctx context.Context, id string) (*domain.CallSlot, error) {
	query := `SELECT ` + callSlotColumns + ` FROM call_slots WHERE id = $1`
	slot, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get call slot: %w", err)
	}
	return slot, nil
}

func (r *PgCallSlotRepository) ListByCamp(ctx context.Context, campID string) ([]domain.CallSlot, error) {
	query := `
		SELECT ` + callSlotColumns + `
		FROM call_slots
		WHERE camp_id = $1
		ORDER BY date ASC, start_time ASC
	`
	rows, err := r.db.Pool.Query(ctx, query, campID)
	if err != nil {
		return nil, fmt.Errorf("failed to list call slots: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

func (r *PgCallSlotRepository) ListAvailable(ctx context.Context, campID string, afterDate *time.Time) ([]domain.CallSlot, error) {
	query := `
		SELECT ` + callSlotColumns + `
		FROM call_slots
		WHERE camp_id = $1
		  AND is_available = true
		  AND ($2::timestamptz IS NULL OR date >= $2)
		ORDER BY date ASC, start_time ASC
	`
	rows, err := r.db.Pool.Query(ctx, query, campID, afterDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list available call slots: %w", err)
	}
	defer rows.Close()
	return r.scanMany(rows)
}

// Reserve takes one seat with a single conditional update. The WHERE clause
// carries both the capacity check and the already-reserved check so two
// racing reserves can never both succeed past capacity. Zero affected rows
// is resolved into the losing reason by re-reading the slot.
func (r *PgCallSlotRepository) Reserve(ctx context.Context, slotID, applicantID string) error {
	query := `
		UPDATE call_slots
		SET current_participants = current_participants + 1,
		    participants = array_append(participants, $2),
		    is_available = (current_participants + 1 < max_participants),
		    updated_at = now()
		WHERE id = $1
		  AND current_participants < max_participants
		  AND NOT ($2 = ANY(participants))
	`

	tag, err := r.db.Pool.Exec(ctx, query, slotID, applicantID)
	if err != nil {
		return fmt.Errorf("failed to reserve call slot: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	slot, err := r.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	switch {
	case slot == nil:
		return domain.ErrNotFound
	case slot.HasParticipant(applicantID):
		return domain.ErrSlotReserved
	default:
		return domain.ErrSlotFull
	}
}

// Release removes the applicant's seat if held, never drops the count below
// zero, and always reopens the slot. Idempotent.
func (r *PgCallSlotRepository) Release(ctx context.Context, slotID, applicantID string) error {
	query := `
		UPDATE call_slots
		SET current_participants = CASE
		        WHEN $2 = ANY(participants) THEN GREATEST(current_participants - 1, 0)
		        ELSE current_participants
		    END,
		    participants = array_remove(participants, $2),
		    is_available = true,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, slotID, applicantID)
	if err != nil {
		return fmt.Errorf("failed to release call slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgCallSlotRepository) Delete(ctx context.Context, slotID string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM call_slots WHERE id = $1`, slotID)
	if err != nil {
		return fmt.Errorf("failed to delete call slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgCallSlotRepository) scanOne(row pgx.Row) (*domain.CallSlot, error) {
	var slot domain.CallSlot
	err := row.Scan(
		&slot.ID,
		&slot.CampID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.MaxParticipants,
		&slot.CurrentParticipants,
		&slot.IsAvailable,
		&slot.Participants,
		&slot.CreatedBy,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if slot.Participants == nil {
		slot.Participants = []string{}
	}
	return &slot, nil
}

func (r *PgCallSlotRepository) scanMany(rows pgx.Rows) ([]domain.CallSlot, error) {
	var slots []domain.CallSlot
	for rows.Next() {
		slot, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call slot: %w", err)
		}
		slots = append(slots, *slot)
	}
	return slots, rows.Err()
}
