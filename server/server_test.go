package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/nlcal/internal/profile"
	"github.com/hrygo/nlcal/plugin/ai/consensus"
	"github.com/hrygo/nlcal/plugin/ai/schedule"
	"github.com/hrygo/nlcal/server/service/calendar"
)

func TestServer_StartAndShutdown(t *testing.T) {
	sampler, err := consensus.NewSampler(consensus.DefaultConfig(), nil)
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := calendar.NewService(schedule.NewParserWithOracles(nil, nil, sampler), nil, nil, logger)

	p := &profile.Profile{Mode: "dev", Addr: "127.0.0.1", Port: 0, Version: "0.1.0"}
	s, err := NewServer(context.Background(), p, nil, svc)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer s.Shutdown(context.Background())

	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "0.1.0", body["version"])
}

func TestNewServer_RequiresService(t *testing.T) {
	_, err := NewServer(context.Background(), &profile.Profile{}, nil, nil)
	assert.Error(t, err)
}
