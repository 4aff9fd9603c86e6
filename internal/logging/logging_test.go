package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-coach/internal/models"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
	assert.True(t, ValidLevel("error"))
	assert.False(t, ValidLevel("trace"))
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), logger)
	ctxLogger := FromContext(ctx)
	ctxLogger.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")

	// missing logger is a no-op, not a panic
	nopLogger := FromContext(context.Background())
	nopLogger.Info().Msg("dropped")
}

func TestEventHelpers(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	logger := WithSession(WithOperation(zerolog.New(&buf), "analyze"), "s-1")

	LogAnalysis(logger, 12, 1, models.BiasReport{
		Biases:           []models.BiasFinding{{Type: models.BiasAnchoring}},
		OverallRiskScore: 40,
	}, 3*time.Millisecond)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "analysis", entry["event"])
	assert.Equal(t, "analyze", entry["operation"])
	assert.Equal(t, "s-1", entry["session_id"])
	assert.EqualValues(t, 12, entry["trades"])
	assert.EqualValues(t, 40, entry["risk_score"])

	buf.Reset()
	LogRequest(logger, "GET", "/api/trades", "10.0.0.1", 503, time.Millisecond)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])

	buf.Reset()
	LogRejectedTrade(WithTradeID(logger, "t-9"), errors.New("bad"))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "t-9", entry["trade_id"])
	assert.Equal(t, "bad", entry["error"])
}

func TestNewLoggerWithConfig_FileOnly(t *testing.T) {
	cfg := LogConfig{Level: "info", File: true, FilePath: t.TempDir() + "/logs/test.log", MaxSize: 1}
	logger := NewLoggerWithConfig(cfg)
	logger.Info().Msg("written")
	assert.FileExists(t, cfg.FilePath)
}
