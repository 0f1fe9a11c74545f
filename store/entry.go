package store

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
)

// Entry is a calendar entry produced by a successful schedule request.
type Entry struct {
	ID        int32
	UID       string
	CreatedTs int64

	// Date is the resolved local date, "YYYY-MM-DD".
	Date string
	// Time is the local time of day, "HH:MM", or empty for all-day entries.
	Time  string
	Title string
	// Offset is the UTC offset the date was resolved in, "+hh:mm".
	Offset string
	// Source is the request text the entry was extracted from.
	Source string
}

// FindEntry filters ListEntries. Date bounds are inclusive.
type FindEntry struct {
	ID       *int32
	UID      *string
	FromDate *string
	ToDate   *string
	Limit    *int
}

type DeleteEntry struct {
	ID int32
}

const datePattern = "2006-01-02"

var (
	// ErrEntryNotFound is returned when a delete matches no entry.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrInvalidEntry is returned when an entry fails validation before insert.
	ErrInvalidEntry = errors.New("invalid entry")
)

// CreateEntry stores a new entry. A missing UID is generated.
func (s *Store) CreateEntry(ctx context.Context, create *Entry) (*Entry, error) {
	if create.Title == "" {
		return nil, errors.Wrap(ErrInvalidEntry, "title is required")
	}
	if _, err := time.Parse(datePattern, create.Date); err != nil {
		return nil, errors.Wrapf(ErrInvalidEntry, "date %q: %v", create.Date, err)
	}
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}
	return s.driver.CreateEntry(ctx, create)
}

// ListEntries returns entries ordered by date, time of day and id.
func (s *Store) ListEntries(ctx context.Context, find *FindEntry) ([]*Entry, error) {
	if find == nil {
		find = &FindEntry{}
	}
	for _, v := range []*string{find.FromDate, find.ToDate} {
		if v == nil {
			continue
		}
		if _, err := time.Parse(datePattern, *v); err != nil {
			return nil, errors.Wrapf(err, "invalid date filter %q", *v)
		}
	}
	return s.driver.ListEntries(ctx, find)
}

// GetEntry returns the first matching entry, or nil when none matches.
func (s *Store) GetEntry(ctx context.Context, find *FindEntry) (*Entry, error) {
	limit := 1
	find.Limit = &limit
	list, err := s.ListEntries(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) DeleteEntry(ctx context.Context, delete *DeleteEntry) error {
	return s.driver.DeleteEntry(ctx, delete)
}
