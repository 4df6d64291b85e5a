package repository

import (
	"context"
	"fmt"
)

// schema is applied statement by statement; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id          SERIAL PRIMARY KEY,
		telegram_id BIGINT      NOT NULL UNIQUE,
		username    TEXT        NOT NULL DEFAULT '',
		full_name   TEXT        NOT NULL DEFAULT '',
		language    TEXT        NOT NULL DEFAULT 'uz',
		role        TEXT        NOT NULL DEFAULT 'USER' CHECK (role IN ('USER', 'ADMIN', 'SUPERADMIN')),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id         SERIAL PRIMARY KEY,
		name       TEXT        NOT NULL UNIQUE,
		quantity   INTEGER     NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS faculties (
		id         SERIAL PRIMARY KEY,
		name       TEXT        NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id         SERIAL PRIMARY KEY,
		account_id INTEGER     NOT NULL REFERENCES accounts (id) ON DELETE RESTRICT,
		product_id INTEGER     NOT NULL REFERENCES products (id) ON DELETE RESTRICT,
		faculty_id INTEGER     NOT NULL REFERENCES faculties (id) ON DELETE RESTRICT,
		comment    TEXT        NOT NULL DEFAULT '',
		wanted     INTEGER     NOT NULL CHECK (wanted > 0),
		given      INTEGER     NOT NULL CHECK (given >= 0),
		missing    INTEGER     NOT NULL CHECK (missing >= 0),
		status     TEXT        NOT NULL CHECK (status IN ('PENDING', 'READY', 'COMPLETED', 'CANCELLED')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS orders_waiting_idx ON orders (product_id) WHERE missing > 0`,
}

// Migrate creates the tables the bot needs if they do not exist yet.
func (r *Repository) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}

	return nil
}
