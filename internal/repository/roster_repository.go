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

type PgRosterRepository struct {
	db *database.PostgresDB
}

func NewPgRosterRepository(db *database.PostgresDB) *PgRosterRepository {
	return &PgRosterRepository{db: db}
}

const rosterColumns = `
	id, camp_id, name, description, is_active, is_archived, created_by,
	created_at, updated_at`

// CreateWithRotation archives the camp's current active roster, creates the
// new one, and populates its entries, all in one transaction. A concurrent
// reader sees either the old active roster or the new one, never neither.
// The partial unique index on active rosters backstops a racing rotation.
func (r *PgRosterRepository) CreateWithRotation(ctx context.Context, roster *domain.Roster, memberIDs []string, actorID string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin rotation: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE rosters
		SET is_archived = true, is_active = false, updated_at = now()
		WHERE camp_id = $1 AND is_active = true AND is_archived = false
	`, roster.CampID)
	if err != nil {
		return fmt.Errorf("failed to archive previous roster: %w", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO rosters (id, camp_id, name, description, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING is_active, is_archived, created_at, updated_at
	`, roster.ID, roster.CampID, roster.Name, roster.Description, roster.CreatedBy).
		Scan(&roster.IsActive, &roster.IsArchived, &roster.CreatedAt, &roster.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_rosters_active" {
			// Lost a racing rotation; the other writer's roster is active.
			return fmt.Errorf("roster rotation for camp %s: %w", roster.CampID, domain.ErrActiveRosterExists)
		}
		return fmt.Errorf("failed to create roster: %w", err)
	}

	for _, memberID := range memberIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO roster_members (roster_id, member_id, added_by, dues_status, overrides)
			VALUES ($1, $2, $3, 'Unpaid', '{}'::jsonb)
			ON CONFLICT (roster_id, member_id) DO NOTHING
		`, roster.ID, memberID, actorID)
		if err != nil {
			return fmt.Errorf("failed to populate roster member %s: %w", memberID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rotation: %w", err)
	}
	return nil
}

func (r *PgRosterRepository) GetByID(ctx context.Context, id string) (*domain.Roster, error) {
	query := `SELECT ` + rosterColumns + ` FROM rosters WHERE id = $1`
	roster, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get roster: %w", err)
	}
	return roster, nil
}

func (r *PgRosterRepository) GetActive(ctx context.Context, campID string) (*domain.Roster, error) {
	query := `
		SELECT ` + rosterColumns + `
		FROM rosters
		WHERE camp_id = $1 AND is_active = true AND is_archived = false
	`
	roster, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, campID))
	if err != nil {
		return nil, fmt.Errorf("failed to get active roster: %w", err)
	}
	return roster, nil
}

func (r *PgRosterRepository) ListByCamp(ctx context.Context, campID string) ([]domain.Roster, error) {
	query := `
		SELECT ` + rosterColumns + `
		FROM rosters
		WHERE camp_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Pool.Query(ctx, query, campID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rosters: %w", err)
	}
	defer rows.Close()

	var rosters []domain.Roster
	for rows.Next() {
		roster, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roster: %w", err)
		}
		rosters = append(rosters, *roster)
	}
	return rosters, rows.Err()
}

func (r *PgRosterRepository) Rename(ctx context.Context, id, name, description string) error {
	query := `
		UPDATE rosters
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1 AND is_archived = false
	`
	tag, err := r.db.Pool.Exec(ctx, query, id, name, description)
	if err != nil {
		return fmt.Errorf("failed to rename roster: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Archive marks the roster archived. Returns false when it was already
// archived, which the service reports as a conflict.
func (r *PgRosterRepository) Archive(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE rosters
		SET is_archived = true, is_active = false, updated_at = now()
		WHERE id = $1 AND is_archived = false
	`
	tag, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to archive roster: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddEntry inserts the entry if absent. Returns false when the member is
// already on the roster.
func (r *PgRosterRepository) AddEntry(ctx context.Context, entry *domain.RosterMemberEntry) (bool, error) {
	overridesJSON, err := json.Marshal(entry.Overrides)
	if err != nil {
		return false, fmt.Errorf("failed to marshal overrides: %w", err)
	}

	query := `
		INSERT INTO roster_members (roster_id, member_id, added_by, dues_status, is_camp_lead, overrides)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (roster_id, member_id) DO NOTHING
	`
	tag, err := r.db.Pool.Exec(ctx, query,
		entry.RosterID,
		entry.MemberID,
		entry.AddedBy,
		entry.DuesStatus,
		entry.IsCampLead,
		overridesJSON,
	)
	if err != nil {
		return false, fmt.Errorf("failed to add roster entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgRosterRepository) GetEntry(ctx context.Context, rosterID, memberID string) (*domain.RosterMemberEntry, error) {
	query := `
		SELECT roster_id, member_id, added_at, added_by, dues_status, is_camp_lead, overrides
		FROM roster_members
		WHERE roster_id = $1 AND member_id = $2
	`
	entry, err := r.scanEntry(r.db.Pool.QueryRow(ctx, query, rosterID, memberID))
	if err != nil {
		return nil, fmt.Errorf("failed to get roster entry: %w", err)
	}
	return entry, nil
}

func (r *PgRosterRepository) RemoveEntry(ctx context.Context, rosterID, memberID string) (bool, error) {
	query := `DELETE FROM roster_members WHERE roster_id = $1 AND member_id = $2`
	tag, err := r.db.Pool.Exec(ctx, query, rosterID, memberID)
	if err != nil {
		return false, fmt.Errorf("failed to remove roster entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MergeOverrides folds only the provided fields into the entry's overrides
// with a jsonb concatenation targeting the single row. Concurrent edits to
// different members of the same roster cannot clobber each other.
func (r *PgRosterRepository) MergeOverrides(ctx context.Context, rosterID, memberID string, patch domain.MemberOverrides) error {
	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to marshal overrides patch: %w", err)
	}

	query := `
		UPDATE roster_members
		SET overrides = overrides || $3::jsonb
		WHERE roster_id = $1 AND member_id = $2
	`
	tag, err := r.db.Pool.Exec(ctx, query, rosterID, memberID, patchJSON)
	if err != nil {
		return fmt.Errorf("failed to merge overrides: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgRosterRepository) SetDues(ctx context.Context, rosterID, memberID string, status domain.DuesStatus) error {
	query := `
		UPDATE roster_members
		SET dues_status = $3
		WHERE roster_id = $1 AND member_id = $2
	`
	tag, err := r.db.Pool.Exec(ctx, query, rosterID, memberID, status)
	if err != nil {
		return fmt.Errorf("failed to set dues: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PgRosterRepository) SetCampLead(ctx context.Context, rosterID, memberID string, isLead bool) error {
	query := `
		UPDATE roster_members
		SET is_camp_lead = $3
		WHERE roster_id = $1 AND member_id = $2
	`
	tag, err := r.db.Pool.Exec(ctx, query, rosterID, memberID, isLead)
	if err != nil {
		return fmt.Errorf("failed to set camp lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListMemberViews returns entries joined with member records and profile
// snapshots. Profiles may be absent for members whose snapshot never synced.
func (r *PgRosterRepository) ListMemberViews(ctx context.Context, rosterID string) ([]domain.RosterMemberView, error) {
	query := `
		SELECT rm.roster_id, rm.member_id, rm.added_at, rm.added_by, rm.dues_status,
		       rm.is_camp_lead, rm.overrides,
		       m.id, m.camp_id, m.user_id, m.role, m.status, m.applied_at,
		       m.reviewed_at, m.reviewed_by, m.created_at, m.updated_at,
		       p.user_id, p.first_name, p.last_name, p.email, p.phone, p.city,
		       p.state, p.playa_name, p.years_burned, p.bio, p.skills,
		       p.has_ticket, p.has_vehicle_pass, p.arrival_date, p.departure_date,
		       p.camp_name
		FROM roster_members rm
		JOIN members m ON m.id = rm.member_id
		LEFT JOIN applicant_profiles p ON p.user_id = m.user_id
		WHERE rm.roster_id = $1
		ORDER BY rm.added_at ASC
	`
	rows, err := r.db.Pool.Query(ctx, query, rosterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster member views: %w", err)
	}
	defer rows.Close()

	var views []domain.RosterMemberView
	for rows.Next() {
		var v domain.RosterMemberView
		var overridesJSON []byte
		var memberReviewedBy *string
		var pUserID, pFirst, pLast, pEmail, pPhone, pCity, pState, pPlaya, pBio, pCampName *string
		var pYears *int
		var pSkills []string

		err := rows.Scan(
			&v.Entry.RosterID, &v.Entry.MemberID, &v.Entry.AddedAt, &v.Entry.AddedBy,
			&v.Entry.DuesStatus, &v.Entry.IsCampLead, &overridesJSON,
			&v.Member.ID, &v.Member.CampID, &v.Member.UserID, &v.Member.Role,
			&v.Member.Status, &v.Member.AppliedAt, &v.Member.ReviewedAt,
			&memberReviewedBy, &v.Member.CreatedAt, &v.Member.UpdatedAt,
			&pUserID, &pFirst, &pLast, &pEmail, &pPhone, &pCity, &pState, &pPlaya,
			&pYears, &pBio, &pSkills,
			&v.Profile.HasTicket, &v.Profile.HasVehiclePass,
			&v.Profile.ArrivalDate, &v.Profile.DepartureDate, &pCampName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roster member view: %w", err)
		}

		if err := json.Unmarshal(overridesJSON, &v.Entry.Overrides); err != nil {
			return nil, fmt.Errorf("failed to unmarshal overrides: %w", err)
		}
		if memberReviewedBy != nil {
			v.Member.ReviewedBy = *memberReviewedBy
		}
		setIf(&v.Profile.UserID, pUserID)
		setIf(&v.Profile.FirstName, pFirst)
		setIf(&v.Profile.LastName, pLast)
		setIf(&v.Profile.Email, pEmail)
		setIf(&v.Profile.Phone, pPhone)
		setIf(&v.Profile.City, pCity)
		setIf(&v.Profile.State, pState)
		setIf(&v.Profile.PlayaName, pPlaya)
		setIf(&v.Profile.Bio, pBio)
		setIf(&v.Profile.CampName, pCampName)
		if pYears != nil {
			v.Profile.YearsBurned = *pYears
		}
		v.Profile.Skills = pSkills

		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *PgRosterRepository) scanOne(row pgx.Row) (*domain.Roster, error) {
	var roster domain.Roster
	var description *string

	err := row.Scan(
		&roster.ID,
		&roster.CampID,
		&roster.Name,
		&description,
		&roster.IsActive,
		&roster.IsArchived,
		&roster.CreatedBy,
		&roster.CreatedAt,
		&roster.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if description != nil {
		roster.Description = *description
	}
	return &roster, nil
}

func (r *PgRosterRepository) scanEntry(row pgx.Row) (*domain.RosterMemberEntry, error) {
	var entry domain.RosterMemberEntry
	var overridesJSON []byte

	err := row.Scan(
		&entry.RosterID,
		&entry.MemberID,
		&entry.AddedAt,
		&entry.AddedBy,
		&entry.DuesStatus,
		&entry.IsCampLead,
		&overridesJSON,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(overridesJSON, &entry.Overrides); err != nil {
		return nil, fmt.Errorf("failed to unmarshal overrides: %w", err)
	}
	return &entry, nil
}

func setIf(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
