// Package calendar turns natural-language requests into calendar entries.
//
// A request is sampled twice: once for the symbolic date and once for the
// entry itself. Only an agreed date produces an entry. A quorum miss on the
// date means the text implies no event, which is an answer and not an error.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrygo/nlcal/plugin/ai/aitime"
	"github.com/hrygo/nlcal/plugin/ai/consensus"
	"github.com/hrygo/nlcal/plugin/ai/schedule"
	"github.com/hrygo/nlcal/plugin/ai/timeout"
	aierrors "github.com/hrygo/nlcal/server/internal/errors"
	"github.com/hrygo/nlcal/server/internal/observability"
	"github.com/hrygo/nlcal/store"
)

// Outcome names how a request ended.
type Outcome string

const (
	// OutcomeScheduled means a date was agreed and an event extracted.
	OutcomeScheduled Outcome = "scheduled"
	// OutcomeResolved means a date was agreed and resolved.
	OutcomeResolved Outcome = "resolved"
	// OutcomeNoEvent means the samples never agreed on a date.
	OutcomeNoEvent Outcome = "no_event"
)

const (
	taskSchedule = "schedule"
	taskWhen     = "when"
	taskResolve  = "resolve"
)

// Store is the subset of store.Store the service needs.
type Store interface {
	CreateEntry(ctx context.Context, create *store.Entry) (*store.Entry, error)
	ListEntries(ctx context.Context, find *store.FindEntry) ([]*store.Entry, error)
	GetEntry(ctx context.Context, find *store.FindEntry) (*store.Entry, error)
	DeleteEntry(ctx context.Context, delete *store.DeleteEntry) error
}

// Request is one natural-language scheduling request.
type Request struct {
	Text      string
	Reference aitime.Reference
	// Save persists the entry when a date is agreed.
	Save bool
}

// WhenResult is the outcome of extracting and resolving a date only.
type WhenResult struct {
	Outcome  Outcome              `json:"outcome"`
	When     *aitime.When         `json:"when,omitempty"`
	Date     *aitime.ResolvedDate `json:"date,omitempty"`
	Attempts int                  `json:"attempts"`
}

// ScheduleResult is the outcome of the full pipeline.
type ScheduleResult struct {
	Outcome  Outcome              `json:"outcome"`
	When     *aitime.When         `json:"when,omitempty"`
	Date     *aitime.ResolvedDate `json:"date,omitempty"`
	Event    *schedule.Event      `json:"event,omitempty"`
	// EventAgreed is false when the title fell back to the request text.
	EventAgreed bool       `json:"event_agreed"`
	Entry       *EntryView `json:"entry,omitempty"`
	Attempts    int        `json:"attempts"`
}

// EntryView is the rendered form of a stored entry.
type EntryView struct {
	ID        int32  `json:"id"`
	UID       string `json:"uid"`
	Date      string `json:"date"`
	Time      string `json:"time,omitempty"`
	Title     string `json:"title"`
	Offset    string `json:"offset"`
	Source    string `json:"source,omitempty"`
	CreatedTs int64  `json:"created_ts"`
}

// NewEntryView converts a stored entry for rendering.
func NewEntryView(e *store.Entry) *EntryView {
	return &EntryView{
		ID:        e.ID,
		UID:       e.UID,
		Date:      e.Date,
		Time:      e.Time,
		Title:     e.Title,
		Offset:    e.Offset,
		Source:    e.Source,
		CreatedTs: e.CreatedTs,
	}
}

// Service orchestrates extraction, resolution and persistence.
type Service struct {
	parser  *schedule.Parser
	store   Store
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewService creates a calendar service. store may be nil, in which case
// every entry operation fails with STORE_FAILURE.
func NewService(parser *schedule.Parser, store Store, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		parser:  parser,
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
}

// Metrics returns the service's request counters.
func (s *Service) Metrics() *observability.Metrics {
	return s.metrics
}

// Schedule runs the whole pipeline for req.
func (s *Service) Schedule(ctx context.Context, req Request) (*ScheduleResult, error) {
	rc := observability.NewRequestContext(s.logger, taskSchedule)
	ctx = consensus.ContextWithLogger(ctx, rc.WithFields())
	ctx, cancel := context.WithTimeout(ctx, timeout.ScheduleTimeout)
	defer cancel()

	rc.Info("schedule request received",
		slog.Int(observability.LogFieldInputLen, len(req.Text)),
		slog.String("text", timeout.Truncate(req.Text)),
		slog.Bool("save", req.Save),
	)

	result, err := s.schedule(ctx, rc, req)
	attempts := 0
	outcome := Outcome("")
	if result != nil {
		attempts, outcome = result.Attempts, result.Outcome
	}
	s.finish(rc, attempts, outcome, err)
	return result, err
}

func (s *Service) schedule(ctx context.Context, rc *observability.RequestContext, req Request) (*ScheduleResult, error) {
	whenRes, err := s.parser.ParseWhen(ctx, req.Text, req.Reference)
	if err != nil {
		return nil, err
	}
	result := &ScheduleResult{Attempts: whenRes.Attempts}
	if !whenRes.Agreed {
		result.Outcome = OutcomeNoEvent
		return result, nil
	}

	when := whenRes.Value
	date, err := aitime.Resolve(when, req.Reference)
	if err != nil {
		return nil, err
	}
	result.When, result.Date = &when, &date

	eventRes, err := s.parser.ParseEvent(ctx, req.Text, req.Reference)
	result.Attempts += eventRes.Attempts
	switch {
	case err == nil && eventRes.Agreed:
		result.Event, result.EventAgreed = &eventRes.Value, true
	case err == nil, errors.Is(err, consensus.ErrOracleExhausted):
		rc.Warn("no agreed event, using request text as title",
			slog.Int(observability.LogFieldAttempts, eventRes.Attempts),
		)
		result.Event = &schedule.Event{Title: strings.TrimSpace(req.Text)}
	default:
		return nil, err
	}
	result.Outcome = OutcomeScheduled

	if req.Save {
		entry, err := s.save(ctx, req, date, *result.Event)
		if err != nil {
			return nil, err
		}
		result.Entry = NewEntryView(entry)
	}
	return result, nil
}

func (s *Service) save(ctx context.Context, req Request, date aitime.ResolvedDate, event schedule.Event) (*store.Entry, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout.StoreTimeout)
	defer cancel()

	entry, err := s.store.CreateEntry(ctx, &store.Entry{
		Date:   date.Date.String(),
		Time:   event.Time,
		Title:  event.Title,
		Offset: aitime.FormatOffset(date.Offset),
		Source: strings.TrimSpace(req.Text),
	})
	switch {
	case errors.Is(err, store.ErrInvalidEntry):
		return nil, aierrors.Wrap(err, aierrors.ErrCodeInvalidArgument, "entry rejected")
	case err != nil:
		return nil, aierrors.StoreFailure("failed to save entry", err)
	}
	return entry, nil
}

// ResolveWhen extracts and resolves the date text refers to.
func (s *Service) ResolveWhen(ctx context.Context, text string, ref aitime.Reference) (*WhenResult, error) {
	rc := observability.NewRequestContext(s.logger, taskWhen)
	ctx = consensus.ContextWithLogger(ctx, rc.WithFields())
	ctx, cancel := context.WithTimeout(ctx, timeout.ScheduleTimeout)
	defer cancel()

	rc.Info("when request received",
		slog.Int(observability.LogFieldInputLen, len(text)),
		slog.String("text", timeout.Truncate(text)),
	)

	result, err := s.resolveWhen(ctx, text, ref)
	attempts := 0
	outcome := Outcome("")
	if result != nil {
		attempts, outcome = result.Attempts, result.Outcome
	}
	s.finish(rc, attempts, outcome, err)
	return result, err
}

func (s *Service) resolveWhen(ctx context.Context, text string, ref aitime.Reference) (*WhenResult, error) {
	res, err := s.parser.ParseWhen(ctx, text, ref)
	if err != nil {
		return nil, err
	}
	result := &WhenResult{Outcome: OutcomeNoEvent, Attempts: res.Attempts}
	if !res.Agreed {
		return result, nil
	}
	date, err := aitime.Resolve(res.Value, ref)
	if err != nil {
		return nil, err
	}
	result.Outcome = OutcomeResolved
	result.When, result.Date = &res.Value, &date
	return result, nil
}

// Resolve resolves an already symbolic date. It makes no model calls.
func (s *Service) Resolve(when aitime.When, ref aitime.Reference) (aitime.ResolvedDate, error) {
	date, err := aitime.Resolve(when, ref)
	if err != nil {
		s.logger.Debug("resolve failed",
			slog.String(observability.LogFieldTask, taskResolve),
			slog.String("when", when.String()),
			slog.Any("error", err),
		)
	}
	return date, err
}

// List returns stored entries.
func (s *Service) List(ctx context.Context, find *store.FindEntry) ([]*EntryView, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout.StoreTimeout)
	defer cancel()

	list, err := s.store.ListEntries(ctx, find)
	if err != nil {
		return nil, aierrors.StoreFailure("failed to list entries", err)
	}
	views := make([]*EntryView, 0, len(list))
	for _, e := range list {
		views = append(views, NewEntryView(e))
	}
	return views, nil
}

// Get returns the entry with the given id.
func (s *Service) Get(ctx context.Context, id int32) (*EntryView, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout.StoreTimeout)
	defer cancel()

	entry, err := s.store.GetEntry(ctx, &store.FindEntry{ID: &id})
	if err != nil {
		return nil, aierrors.StoreFailure("failed to get entry", err)
	}
	if entry == nil {
		return nil, aierrors.NotFound(fmt.Sprintf("entry %d not found", id))
	}
	return NewEntryView(entry), nil
}

// Delete removes the entry with the given id.
func (s *Service) Delete(ctx context.Context, id int32) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout.StoreTimeout)
	defer cancel()

	err := s.store.DeleteEntry(ctx, &store.DeleteEntry{ID: id})
	switch {
	case err == nil:
		s.logger.Info("entry deleted", slog.Int("entry_id", int(id)))
		return nil
	case errors.Is(err, store.ErrEntryNotFound):
		return aierrors.NotFound(fmt.Sprintf("entry %d not found", id))
	default:
		return aierrors.StoreFailure("failed to delete entry", err)
	}
}

func (s *Service) requireStore() error {
	if s.store == nil {
		return aierrors.StoreFailure("calendar store is not configured", nil)
	}
	return nil
}

func (s *Service) finish(rc *observability.RequestContext, attempts int, outcome Outcome, err error) {
	s.metrics.RecordRequest(rc.Task, attempts, rc.Duration())
	if err != nil {
		code := aierrors.FromError(err).Code
		s.metrics.RecordFailure(rc.Task)
		rc.Error(rc.Task+" request failed", err,
			slog.String(observability.LogFieldErrorCode, string(code)),
			slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
		)
		return
	}
	if outcome == OutcomeNoEvent {
		s.metrics.RecordNoConsensus(rc.Task)
	}
	rc.Info(rc.Task+" request completed",
		slog.Int(observability.LogFieldAttempts, attempts),
		slog.String(observability.LogFieldOutcome, string(outcome)),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
	)
}
