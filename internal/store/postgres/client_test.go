package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnStringPrefersDSN(t *testing.T) {
	got := connString(ClientConfig{
		DSN:  "postgres://u:p@db:5432/journal",
		Host: "ignored",
	})
	assert.Equal(t, "postgres://u:p@db:5432/journal", got)
}

func TestConnStringAssemblesFields(t *testing.T) {
	got := connString(ClientConfig{
		Host:     "db.internal",
		Database: "journal",
		User:     "bot",
		Password: "pw",
	})
	assert.Equal(t, "postgres://bot:pw@db.internal:5432/journal?sslmode=disable", got)
}

func TestEmbeddedMigrationsAreVersionedAndOrdered(t *testing.T) {
	ms := embeddedMigrations()
	require.NotEmpty(t, ms)

	assert.Equal(t, 1, ms[0].version)
	assert.Equal(t, "001_init.sql", ms[0].name)
	for i := 1; i < len(ms); i++ {
		assert.Greater(t, ms[i].version, ms[i-1].version)
	}
}
