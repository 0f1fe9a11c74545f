package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/nlcal/internal/profile"
	"github.com/hrygo/nlcal/store"
	"github.com/hrygo/nlcal/store/db/postgres"
)

// Requires a disposable database: POSTGRES_TEST_DSN=postgres://...?sslmode=disable
func TestEntryStore(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()

	p := &profile.Profile{Mode: "dev", Driver: "postgres", DSN: dsn}
	driver, err := postgres.NewDB(p)
	require.NoError(t, err)
	s := store.New(driver, p)
	defer s.Close()

	_, err = driver.GetDB().ExecContext(ctx, "DROP TABLE IF EXISTS entry")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(ctx))

	created, err := s.CreateEntry(ctx, &store.Entry{Date: "2024-06-17", Time: "09:30", Title: "Dentist", Offset: "+02:00"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = s.CreateEntry(ctx, &store.Entry{Date: "2024-06-14", Title: "Pay rent", Offset: "+02:00"})
	require.NoError(t, err)

	from := "2024-06-15"
	list, err := s.ListEntries(ctx, &store.FindEntry{FromDate: &from})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Dentist", list[0].Title)

	require.NoError(t, s.DeleteEntry(ctx, &store.DeleteEntry{ID: created.ID}))
	assert.ErrorIs(t, s.DeleteEntry(ctx, &store.DeleteEntry{ID: created.ID}), store.ErrEntryNotFound)
}
