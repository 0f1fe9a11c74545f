package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/nlcal/plugin/ai/aitime"
	"github.com/hrygo/nlcal/plugin/ai/consensus"
	"github.com/hrygo/nlcal/plugin/ai/schedule"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{"empty input", schedule.ErrEmptyInput, ErrCodeInvalidArgument, http.StatusBadRequest},
		{"input too long", fmt.Errorf("%w: 600", schedule.ErrInputTooLong), ErrCodeInvalidArgument, http.StatusBadRequest},
		{"bad weekday", aitime.ErrInvalidWeekday, ErrCodeInvalidArgument, http.StatusBadRequest},
		{"invalid date", fmt.Errorf("%w: 2025-02-29", aitime.ErrInvalidCalendarDate), ErrCodeInvalidCalendarDate, http.StatusUnprocessableEntity},
		{"exhausted", fmt.Errorf("%w after 21 attempts", consensus.ErrOracleExhausted), ErrCodeOracleExhausted, http.StatusBadGateway},
		{"unavailable", fmt.Errorf("%w after 21 attempts: %w", consensus.ErrOracleExhausted, consensus.ErrOracleUnavailable), ErrCodeLLMUnavailable, http.StatusServiceUnavailable},
		{"deadline", fmt.Errorf("extraction canceled: %w", context.DeadlineExceeded), ErrCodeTimeout, http.StatusGatewayTimeout},
		{"canceled", context.Canceled, ErrCodeContextCanceled, 499},
		{"unknown", stderrors.New("disk on fire"), ErrCodeInternal, http.StatusInternalServerError},
		{"already classified", fmt.Errorf("wrapped: %w", StoreFailure("insert", nil)), ErrCodeStoreFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus())
		})
	}

	assert.Nil(t, FromError(nil))
}

func TestFromError_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("%w: 2021-02-29", aitime.ErrInvalidCalendarDate)
	err := FromError(cause)
	assert.ErrorIs(t, err, aitime.ErrInvalidCalendarDate)
	assert.Contains(t, err.Error(), "[INVALID_CALENDAR_DATE]")
	assert.Contains(t, err.Error(), "2021-02-29")
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotFound("entry 7"))
	assert.True(t, IsCode(err, ErrCodeNotFound))
	assert.False(t, IsCode(err, ErrCodeTimeout))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeNotFound))
}

func TestAIError_WithContext(t *testing.T) {
	err := InvalidArgument("bad timezone").WithContext("timezone", "Mars/Olympus")
	assert.Equal(t, "Mars/Olympus", err.Context["timezone"])
	assert.Equal(t, "[INVALID_ARGUMENT] bad timezone", err.Error())
}
