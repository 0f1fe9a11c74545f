package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSQL(t *testing.T) {
	sql := `-- entry
CREATE TABLE entry (
  id SERIAL PRIMARY KEY
);

CREATE INDEX idx_entry ON entry (id);
`
	got := splitSQL(sql)
	require.Len(t, got, 2)
	assert.Equal(t, "CREATE TABLE entry (\n  id SERIAL PRIMARY KEY\n)", got[0])
	assert.Equal(t, "CREATE INDEX idx_entry ON entry (id)", got[1])
}

func TestLatestSchemaEmbedded(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres"} {
		data, err := migrationFS.ReadFile("migration/" + driver + "/" + LatestSchemaFileName)
		require.NoError(t, err, driver)
		assert.Contains(t, string(data), "CREATE TABLE entry")
	}
}
