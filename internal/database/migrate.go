package database

import (
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist. Uniqueness constraints on
// users.email, sessions.token, tickets.message_id and companies.name are the
// serialization mechanism for concurrent writers; there is no application
// level locking anywhere above this layer.
func Migrate(db *sql.DB) error {
	for _, stmt := range schemaStatements() {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func schemaStatements() []string {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	bigserial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if IsPostgreSQL() {
		serial = "SERIAL PRIMARY KEY"
		bigserial = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id ` + serial + `,
			name TEXT NOT NULL,
			domain TEXT,
			contact_email TEXT,
			contact_phone TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_name ON companies(name)`,

		`CREATE TABLE IF NOT EXISTS users (
			id ` + serial + `,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'customer',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			company_id INTEGER REFERENCES companies(id),
			department TEXT,
			job_title TEXT,
			phone TEXT,
			last_login_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			remote_addr TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,

		`CREATE TABLE IF NOT EXISTS tickets (
			id ` + serial + `,
			ticket_number TEXT NOT NULL DEFAULT '',
			subject TEXT NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'new',
			priority TEXT NOT NULL DEFAULT 'medium',
			category TEXT NOT NULL DEFAULT 'general',
			source TEXT NOT NULL DEFAULT 'manual',
			message_id TEXT,
			from_email TEXT NOT NULL DEFAULT '',
			to_email TEXT NOT NULL DEFAULT '',
			customer_name TEXT,
			customer_id INTEGER,
			customer_email TEXT,
			customer_phone TEXT,
			company_id INTEGER REFERENCES companies(id),
			assignee_id INTEGER REFERENCES users(id),
			created_by INTEGER REFERENCES users(id),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			closed_at TIMESTAMP,
			resolution_time INTEGER
		)`,
		// NULL message ids (manual tickets) are distinct under a unique index
		// in both dialects; a plain index keeps ON CONFLICT inference working.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_message_id ON tickets(message_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets(created_at)`,

		`CREATE TABLE IF NOT EXISTS activity_log (
			id ` + bigserial + `,
			actor_id INTEGER,
			action TEXT NOT NULL,
			resource_type TEXT NOT NULL DEFAULT '',
			resource_id TEXT NOT NULL DEFAULT '',
			details TEXT NOT NULL DEFAULT '',
			remote_addr TEXT NOT NULL DEFAULT '',
			request_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_actor ON activity_log(actor_id, created_at)`,
	}

	return stmts
}
