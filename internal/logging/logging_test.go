package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	eventbus "github.com/graphmend/graphmend/internal/eventbus"
	events "github.com/graphmend/graphmend/internal/events"
)

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info().Msg("quiet")
	log.Warn().Msg("loud")

	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "loud")
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "nonsense")

	log.Debug().Msg("debug")
	log.Info().Msg("info")

	require.NotContains(t, buf.String(), "debug")
	require.Contains(t, buf.String(), "info")
}

func TestRegister_LogsEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)

	var buf bytes.Buffer
	log := New(&buf, "info")
	defer Register(log)()

	req := &http.Request{Method: "POST", URL: &url.URL{Path: "/graphql"}}
	eventbus.Publish(context.Background(), events.HTTPFinish{
		Request: req, Status: 200, Duration: 5 * time.Millisecond,
	})
	eventbus.Publish(context.Background(), events.SchemaHeal{
		Removed: []string{"Orphan"}, TypeCount: 7, Duration: time.Millisecond,
	})

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var httpLine map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &httpLine))
	require.Equal(t, "http request", httpLine["message"])
	require.Equal(t, "/graphql", httpLine["path"])
	require.EqualValues(t, 200, httpLine["status"])

	var healLine map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &healLine))
	require.Equal(t, "schema heal", healLine["message"])
	require.Equal(t, []any{"Orphan"}, healLine["removed"])
}
