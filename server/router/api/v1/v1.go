package v1

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/nlcal/internal/profile"
	aierrors "github.com/hrygo/nlcal/server/internal/errors"
	"github.com/hrygo/nlcal/server/middleware"
	"github.com/hrygo/nlcal/server/service/calendar"
)

const (
	// Per-client request rate for the API.
	requestsPerSecond = 10
	requestBurst      = 20

	// maxInflightExtractions caps concurrent requests that sample the model.
	maxInflightExtractions = 4
)

type APIV1Service struct {
	Profile  *profile.Profile
	Calendar *calendar.Service

	limiter *middleware.RateLimiter
	// extractSemaphore bounds model-backed requests so one client cannot
	// queue an unbounded number of sampling rounds.
	extractSemaphore *semaphore.Weighted
}

func NewAPIV1Service(profile *profile.Profile, calendarService *calendar.Service) *APIV1Service {
	return &APIV1Service{
		Profile:          profile,
		Calendar:         calendarService,
		limiter:          middleware.NewRateLimiter(requestsPerSecond, requestBurst),
		extractSemaphore: semaphore.NewWeighted(maxInflightExtractions),
	}
}

// RegisterRoutes registers the JSON API with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.Healthz)

	api := echoServer.Group("/api/v1", echomiddleware.CORS(), s.limiter.Middleware())
	api.POST("/schedule", s.Schedule)
	api.POST("/when", s.When)
	api.POST("/resolve", s.Resolve)
	api.GET("/entries", s.ListEntries)
	api.GET("/entries/:id", s.GetEntry)
	api.DELETE("/entries/:id", s.DeleteEntry)
	api.GET("/stats", s.GetStats)
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Code    aierrors.ErrorCode `json:"code"`
	Message string             `json:"message"`
}

// HTTPErrorHandler renders errors as {code, message}.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		slog.Error("api request failed",
			slog.String("path", c.Path()),
			slog.String("code", string(body.Code)),
			slog.Any("error", err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
	}
}

func errorResponse(err error) (int, ErrorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := aierrors.ErrCodeInternal
		switch {
		case he.Code == http.StatusNotFound:
			code = aierrors.ErrCodeNotFound
		case he.Code == http.StatusTooManyRequests:
			code = aierrors.ErrCodeRateLimitExceeded
		case he.Code < http.StatusInternalServerError:
			code = aierrors.ErrCodeInvalidArgument
		}
		msg := fmt.Sprint(he.Message)
		if he.Internal != nil && he.Internal.Error() != msg {
			msg = fmt.Sprintf("%s: %v", msg, he.Internal)
		}
		return he.Code, ErrorResponse{Code: code, Message: msg}
	}

	aiErr := aierrors.FromError(err)
	msg := aiErr.Message
	if aiErr.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, aiErr.Cause)
	}
	return aiErr.HTTPStatus(), ErrorResponse{Code: aiErr.Code, Message: msg}
}
