package persistence

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationSource(t *testing.T) {
	_, err := migrationSource("")
	assert.ErrorIs(t, err, ErrMigrationsPathRequired)

	url, err := migrationSource("migrations/postgres")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file:///"))
	assert.True(t, strings.HasSuffix(url, "/migrations/postgres"))
}

func TestRunMigrations_InputValidation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := RunMigrations(logger, "postgres://cash@localhost/cash", "")
	assert.ErrorIs(t, err, ErrMigrationsPathRequired)

	_, err = RunMigrations(logger, "", "migrations/postgres")
	assert.ErrorIs(t, err, ErrDatabaseURLRequired)
}
