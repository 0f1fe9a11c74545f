package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/nlcal/plugin/ai/aitime"
	aierrors "github.com/hrygo/nlcal/server/internal/errors"
	"github.com/hrygo/nlcal/server/service/calendar"
	"github.com/hrygo/nlcal/server/timezone"
	"github.com/hrygo/nlcal/store"
)

// ReferenceParams pins the reference instant. Both fields are optional.
type ReferenceParams struct {
	// Now is an RFC3339 instant or a local "YYYY-MM-DD[ HH:MM]".
	Now string `json:"now"`
	// Timezone is an IANA name or a "+hh:mm" offset.
	Timezone string `json:"timezone"`
}

type ScheduleRequest struct {
	Text string `json:"text"`
	ReferenceParams
	Save bool `json:"save"`
}

type WhenRequest struct {
	Text string `json:"text"`
	ReferenceParams
}

type ResolveRequest struct {
	When *aitime.When `json:"when"`
	ReferenceParams
}

type ResolveResponse struct {
	When aitime.When         `json:"when"`
	Date aitime.ResolvedDate `json:"date"`
}

type ListEntriesResponse struct {
	Entries []*calendar.EntryView `json:"entries"`
}

// Schedule extracts, resolves and optionally saves an entry.
// POST /api/v1/schedule
func (s *APIV1Service) Schedule(c echo.Context) error {
	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	ref, err := s.reference(req.ReferenceParams)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := s.extractSemaphore.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.extractSemaphore.Release(1)

	result, err := s.Calendar.Schedule(ctx, calendar.Request{Text: req.Text, Reference: ref, Save: req.Save})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// When extracts and resolves a date only.
// POST /api/v1/when
func (s *APIV1Service) When(c echo.Context) error {
	var req WhenRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	ref, err := s.reference(req.ReferenceParams)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := s.extractSemaphore.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.extractSemaphore.Release(1)

	result, err := s.Calendar.ResolveWhen(ctx, req.Text, ref)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Resolve resolves a symbolic date without calling the model.
// POST /api/v1/resolve
func (s *APIV1Service) Resolve(c echo.Context) error {
	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if req.When == nil {
		return aierrors.InvalidArgument("when is required")
	}
	ref, err := s.reference(req.ReferenceParams)
	if err != nil {
		return err
	}

	date, err := s.Calendar.Resolve(*req.When, ref)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ResolveResponse{When: *req.When, Date: date})
}

// ListEntries lists saved entries.
// GET /api/v1/entries?from=YYYY-MM-DD&to=YYYY-MM-DD&limit=N
func (s *APIV1Service) ListEntries(c echo.Context) error {
	find := &store.FindEntry{}
	for param, dest := range map[string]**string{"from": &find.FromDate, "to": &find.ToDate} {
		v := c.QueryParam(param)
		if v == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return aierrors.InvalidArgument(param + " must be a YYYY-MM-DD date").WithContext(param, v)
		}
		*dest = &v
	}
	if v := c.QueryParam("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return aierrors.InvalidArgument("limit must be a positive integer").WithContext("limit", v)
		}
		find.Limit = &limit
	}

	entries, err := s.Calendar.List(c.Request().Context(), find)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ListEntriesResponse{Entries: entries})
}

// GetEntry returns one saved entry.
// GET /api/v1/entries/:id
func (s *APIV1Service) GetEntry(c echo.Context) error {
	id, err := entryID(c)
	if err != nil {
		return err
	}
	entry, err := s.Calendar.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entry)
}

// DeleteEntry removes one saved entry.
// DELETE /api/v1/entries/:id
func (s *APIV1Service) DeleteEntry(c echo.Context) error {
	id, err := entryID(c)
	if err != nil {
		return err
	}
	if err := s.Calendar.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func entryID(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id < 1 {
		return 0, aierrors.InvalidArgument("entry id must be a positive integer").WithContext("id", c.Param("id"))
	}
	return int32(id), nil
}

// reference builds the reference instant, defaulting the zone to the profile's.
func (s *APIV1Service) reference(p ReferenceParams) (aitime.Reference, error) {
	tz := p.Timezone
	if tz == "" && s.Profile != nil {
		tz = s.Profile.Timezone
	}
	ref, err := timezone.ReferenceAt(p.Now, tz)
	if err != nil {
		return aitime.Reference{}, aierrors.Wrap(err, aierrors.ErrCodeInvalidArgument, "invalid reference time")
	}
	return ref, nil
}
