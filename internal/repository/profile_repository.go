package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"camphub-be/internal/domain"
	"camphub-be/pkg/database"

	"github.com/jackc/pgx/v5"
)

// PgProfileRepository reads locally-stored profile snapshots. A remote
// profile service can stand in for it behind the same service-level
// interface when PROFILE_SERVICE_URL is configured.
type PgProfileRepository struct {
	db *database.PostgresDB
}

func NewPgProfileRepository(db *database.PostgresDB) *PgProfileRepository {
	return &PgProfileRepository{db: db}
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.ApplicantProfile, error) {
	var p domain.ApplicantProfile
	var state, playaName, campName *string
	var flagsJSON []byte

	query := `
		SELECT user_id, first_name, last_name, email, phone, city, state,
		       playa_name, years_burned, bio, skills, interest_flags,
		       has_ticket, has_vehicle_pass, arrival_date, departure_date, camp_name
		FROM applicant_profiles
		WHERE user_id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.City,
		&state,
		&playaName,
		&p.YearsBurned,
		&p.Bio,
		&p.Skills,
		&flagsJSON,
		&p.HasTicket,
		&p.HasVehiclePass,
		&p.ArrivalDate,
		&p.DepartureDate,
		&campName,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if len(flagsJSON) > 0 {
		if err := json.Unmarshal(flagsJSON, &p.InterestFlags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal interest flags: %w", err)
		}
	}
	if state != nil {
		p.State = *state
	}
	if playaName != nil {
		p.PlayaName = *playaName
	}
	if campName != nil {
		p.CampName = *campName
	}
	return &p, nil
}

// SetCampName updates the denormalized camp name on the profile. Pass an
// empty string to clear it after a withdrawal.
func (r *PgProfileRepository) SetCampName(ctx context.Context, userID, campName string) error {
	query := `
		UPDATE applicant_profiles
		SET camp_name = NULLIF($2, ''), updated_at = now()
		WHERE user_id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query, userID, campName)
	if err != nil {
		return fmt.Errorf("failed to set camp name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
