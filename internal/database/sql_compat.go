package database

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// GetDBDriver returns the configured database driver.
// In test mode, TEST_DB_DRIVER takes precedence.
func GetDBDriver() string {
	driver := os.Getenv("TEST_DB_DRIVER")
	if driver == "" {
		driver = os.Getenv("DB_DRIVER")
	}
	if driver == "" {
		driver = "sqlite3"
	}
	return strings.ToLower(driver)
}

// IsPostgreSQL returns true if using PostgreSQL.
func IsPostgreSQL() bool {
	return GetDBDriver() == "postgres"
}

// IsSQLite returns true if using the embedded SQLite backend.
func IsSQLite() bool {
	driver := GetDBDriver()
	return driver == "sqlite3" || driver == "sqlite"
}

var dollarPlaceholder = regexp.MustCompile(`\$\d+`)

// ConvertPlaceholders converts SQL placeholders to the format required by the
// current database. All queries in the codebase use ? placeholders; this is
// the only function that may rewrite them.
//
// - For PostgreSQL: ? -> $1, $2, ...
// - For SQLite: ? passed through as-is
//
// Writing $N placeholders directly is a bug and panics so it is caught in tests.
func ConvertPlaceholders(query string) string {
	if dollarPlaceholder.MatchString(query) {
		panic(fmt.Sprintf("ConvertPlaceholders: $N placeholders are not allowed, use ?\nQuery: %s", query))
	}

	if !IsPostgreSQL() {
		return query
	}

	var result strings.Builder
	paramNum := 1
	for _, c := range query {
		if c == '?' {
			fmt.Fprintf(&result, "$%d", paramNum)
			paramNum++
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// UpsertConflictClause returns the dialect-appropriate ON CONFLICT target for
// the given unique column. Both supported dialects speak the SQLite/Postgres
// ON CONFLICT syntax, so this is a single code path today; the helper keeps
// the dialect decision in one place.
func UpsertConflictClause(column string) string {
	return fmt.Sprintf("ON CONFLICT(%s)", column)
}
