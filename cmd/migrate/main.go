package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"camphub-be/internal/config"
	"camphub-be/pkg/database"
)

const schema = `
CREATE TABLE IF NOT EXISTS camps (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	owner_id UUID NOT NULL,
	accepting_members BOOLEAN NOT NULL DEFAULT true,
	total_members INTEGER NOT NULL DEFAULT 0,
	total_applications INTEGER NOT NULL DEFAULT 0,
	invite_template TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS applicant_profiles (
	user_id UUID PRIMARY KEY,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT,
	playa_name TEXT,
	years_burned INTEGER NOT NULL DEFAULT 0,
	bio TEXT NOT NULL DEFAULT '',
	skills TEXT[],
	interest_flags JSONB NOT NULL DEFAULT '{}'::jsonb,
	has_ticket BOOLEAN,
	has_vehicle_pass BOOLEAN,
	arrival_date TIMESTAMPTZ,
	departure_date TIMESTAMPTZ,
	camp_name TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS applications (
	id UUID PRIMARY KEY,
	applicant_id UUID NOT NULL,
	camp_id UUID NOT NULL REFERENCES camps(id),
	status TEXT NOT NULL,
	application_data JSONB NOT NULL DEFAULT '{}'::jsonb,
	action_history JSONB NOT NULL DEFAULT '[]'::jsonb,
	messages JSONB NOT NULL DEFAULT '[]'::jsonb,
	invite_token TEXT,
	reviewed_by UUID,
	reviewed_at TIMESTAMPTZ,
	review_notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- One non-terminal application per (applicant, camp). Final arbiter for
-- racing apply calls.
CREATE UNIQUE INDEX IF NOT EXISTS uq_applications_active
	ON applications (applicant_id, camp_id)
	WHERE status NOT IN ('rejected', 'withdrawn', 'deleted');

CREATE INDEX IF NOT EXISTS idx_applications_camp_status
	ON applications (camp_id, status);

CREATE TABLE IF NOT EXISTS call_slots (
	id UUID PRIMARY KEY,
	camp_id UUID NOT NULL REFERENCES camps(id),
	date TIMESTAMPTZ NOT NULL,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	max_participants INTEGER NOT NULL CHECK (max_participants >= 1),
	current_participants INTEGER NOT NULL DEFAULT 0
		CHECK (current_participants >= 0 AND current_participants <= max_participants),
	is_available BOOLEAN NOT NULL DEFAULT true,
	participants UUID[] NOT NULL DEFAULT '{}',
	created_by UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_call_slots_camp_available
	ON call_slots (camp_id, is_available, date);

CREATE TABLE IF NOT EXISTS invites (
	id UUID PRIMARY KEY,
	camp_id UUID NOT NULL REFERENCES camps(id),
	token TEXT NOT NULL UNIQUE,
	recipient TEXT NOT NULL,
	method TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	sender_id UUID NOT NULL,
	message TEXT,
	applied_by UUID,
	applied_at TIMESTAMPTZ,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_invites_camp_recipient
	ON invites (camp_id, recipient, status);

CREATE TABLE IF NOT EXISTS members (
	id UUID PRIMARY KEY,
	camp_id UUID NOT NULL REFERENCES camps(id),
	user_id UUID NOT NULL,
	role TEXT NOT NULL DEFAULT 'member',
	status TEXT NOT NULL DEFAULT 'active',
	applied_at TIMESTAMPTZ,
	reviewed_at TIMESTAMPTZ,
	reviewed_by UUID,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (camp_id, user_id)
);

CREATE TABLE IF NOT EXISTS rosters (
	id UUID PRIMARY KEY,
	camp_id UUID NOT NULL REFERENCES camps(id),
	name TEXT NOT NULL,
	description TEXT,
	is_active BOOLEAN NOT NULL DEFAULT true,
	is_archived BOOLEAN NOT NULL DEFAULT false,
	created_by UUID NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

-- At most one active, non-archived roster per camp.
CREATE UNIQUE INDEX IF NOT EXISTS uq_rosters_active
	ON rosters (camp_id)
	WHERE is_active = true AND is_archived = false;

CREATE TABLE IF NOT EXISTS roster_members (
	roster_id UUID NOT NULL REFERENCES rosters(id),
	member_id UUID NOT NULL REFERENCES members(id),
	added_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	added_by UUID NOT NULL,
	dues_status TEXT NOT NULL DEFAULT 'Unpaid',
	is_camp_lead BOOLEAN NOT NULL DEFAULT false,
	overrides JSONB NOT NULL DEFAULT '{}'::jsonb,
	PRIMARY KEY (roster_id, member_id)
);

CREATE TABLE IF NOT EXISTS activity_log (
	id UUID PRIMARY KEY,
	entity_type TEXT NOT NULL,
	entity_id UUID NOT NULL,
	actor_id UUID NOT NULL,
	activity_type TEXT NOT NULL,
	details JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_activity_log_entity
	ON activity_log (entity_type, entity_id, created_at);
`

const dropSchema = `
DROP TABLE IF EXISTS activity_log;
DROP TABLE IF EXISTS roster_members;
DROP TABLE IF EXISTS rosters;
DROP TABLE IF EXISTS members;
DROP TABLE IF EXISTS invites;
DROP TABLE IF EXISTS call_slots;
DROP TABLE IF EXISTS applications;
DROP TABLE IF EXISTS applicant_profiles;
DROP TABLE IF EXISTS camps;
`

const seedData = `
INSERT INTO camps (id, name, owner_id, accepting_members, invite_template)
VALUES (
	'11111111-1111-1111-1111-111111111111',
	'Dust Bunnies',
	'22222222-2222-2222-2222-222222222222',
	true,
	'Come join {{campName}} on playa! Apply: {{link}}'
)
ON CONFLICT (id) DO NOTHING;

INSERT INTO applicant_profiles (user_id, first_name, last_name, email, phone, city, years_burned, bio)
VALUES (
	'33333333-3333-3333-3333-333333333333',
	'Dusty', 'Tester', 'dusty@example.com', '+15550100', 'Reno', 3,
	'Long-time burner, first-time applicant.'
)
ON CONFLICT (user_id) DO NOTHING;
`

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|drop|seed>")
	}
	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer db.Close()

	switch command {
	case "up":
		run(ctx, db, schema, "schema applied")
	case "drop":
		run(ctx, db, dropSchema, "schema dropped")
	case "seed":
		run(ctx, db, seedData, "seed data inserted")
	default:
		log.Fatalf("unknown command %q", command)
	}
}

func run(ctx context.Context, db *database.PostgresDB, sql, doneMsg string) {
	if _, err := db.Pool.Exec(ctx, sql); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	fmt.Println(doneMsg)
}
