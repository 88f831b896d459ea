package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestVersion(t *testing.T) {
	v, err := LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}

func TestMigrationFilesComeInPairs(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "files")
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestSchemaCoversEveryCollection(t *testing.T) {
	up, err := fs.ReadFile(migrationFiles, "files/000001_create_portfolio.up.sql")
	require.NoError(t, err)

	for _, table := range []string{"portfolio_settings", "long_videos", "shorts", "clients", "pricing_packages", "faq_items"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table, table)
	}
}

func TestStatusPending(t *testing.T) {
	assert.True(t, Status{Current: 0, Latest: 1}.Pending())
	assert.False(t, Status{Current: 1, Latest: 1}.Pending())
}
