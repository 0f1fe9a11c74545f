// Package timeout defines centralized timeout constants for AI operations.
package timeout

import "time"

// AI operation timeout constants.
const (
	// OracleTimeout bounds a single model call made while sampling.
	OracleTimeout = 60 * time.Second

	// ScheduleTimeout bounds a whole scheduling request, which may make up
	// to two full sampling rounds.
	ScheduleTimeout = 5 * time.Minute

	// StoreTimeout is the timeout for a single calendar store operation.
	StoreTimeout = 10 * time.Second

	// HTTPReadTimeout and HTTPWriteTimeout bound the API server's connections.
	HTTPReadTimeout  = 30 * time.Second
	HTTPWriteTimeout = ScheduleTimeout + 30*time.Second

	// ShutdownTimeout is how long the server waits for in-flight requests.
	ShutdownTimeout = 15 * time.Second

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)

// Truncate shortens s to MaxTruncateLength runes for logging.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxTruncateLength {
		return s
	}
	return string(r[:MaxTruncateLength]) + "..."
}
