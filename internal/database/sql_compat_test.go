package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDBDriverDefaultsToSQLite(t *testing.T) {
	t.Setenv("TEST_DB_DRIVER", "")
	t.Setenv("DB_DRIVER", "")
	assert.Equal(t, "sqlite3", GetDBDriver())
	assert.True(t, IsSQLite())
	assert.False(t, IsPostgreSQL())
}

func TestGetDBDriverTestOverride(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("TEST_DB_DRIVER", "sqlite3")
	assert.Equal(t, "sqlite3", GetDBDriver(), "TEST_DB_DRIVER wins over DB_DRIVER")
}

func TestGetDBDriverNormalizesCase(t *testing.T) {
	t.Setenv("TEST_DB_DRIVER", "Postgres")
	assert.Equal(t, "postgres", GetDBDriver())
	assert.True(t, IsPostgreSQL())
}

func TestConvertPlaceholdersSQLite(t *testing.T) {
	t.Setenv("TEST_DB_DRIVER", "sqlite3")
	query := "SELECT id FROM tickets WHERE status = ? AND priority = ?"
	assert.Equal(t, query, ConvertPlaceholders(query), "sqlite keeps ? placeholders")
}

func TestConvertPlaceholdersPostgres(t *testing.T) {
	t.Setenv("TEST_DB_DRIVER", "postgres")
	got := ConvertPlaceholders("INSERT INTO sessions (token, user_id) VALUES (?, ?)")
	assert.Equal(t, "INSERT INTO sessions (token, user_id) VALUES ($1, $2)", got)
}

func TestConvertPlaceholdersNoPlaceholders(t *testing.T) {
	t.Setenv("TEST_DB_DRIVER", "postgres")
	query := "SELECT COUNT(*) FROM users"
	assert.Equal(t, query, ConvertPlaceholders(query))
}

func TestConvertPlaceholdersRejectsDollarNumbering(t *testing.T) {
	t.Setenv("TEST_DB_DRIVER", "sqlite3")
	assert.Panics(t, func() {
		ConvertPlaceholders("SELECT * FROM users WHERE id = $1")
	}, "hand-written $N placeholders are a bug regardless of dialect")
}

func TestUpsertConflictClause(t *testing.T) {
	assert.Equal(t, "ON CONFLICT(message_id)", UpsertConflictClause("message_id"))
}
