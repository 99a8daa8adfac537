package logger

import (
	"context"
	"testing"

	"restaurant-analytics/internal/shared/contextkeys"

	"github.com/stretchr/testify/assert"
)

func TestLoggerInterface_Contract(t *testing.T) {
	var _ Logger = NewLogger()
	var _ Logger = NewLoggerWithConfig("info", "json")
}

func TestLogrusLogger_WithFieldsAndContext(t *testing.T) {
	log := NewLogger()
	log2 := log.WithFields(map[string]interface{}{"foo": "bar"})
	assert.NotNil(t, log2)

	ctx := contextkeys.WithRunID(context.Background(), "run-1")
	ctx = contextkeys.WithCity(ctx, "Austin, TX")
	log3 := log.WithContext(ctx)
	assert.NotNil(t, log3)
}

func TestLogrusLogger_WithContextExtractsFields(t *testing.T) {
	ctx := contextkeys.WithRunID(context.Background(), "run-42")
	ctx = contextkeys.WithCity(ctx, "Chicago, IL")

	log := NewLogger().WithContext(ctx)
	entry := log.(*LogrusLogger).entry

	assert.Equal(t, "run-42", entry.Data["run_id"])
	assert.Equal(t, "Chicago, IL", entry.Data["city"])
}

func TestLogrusLogger_WithComponent(t *testing.T) {
	log := NewLogger().WithComponent("ingestion")
	entry := log.(*LogrusLogger).entry
	assert.Equal(t, "ingestion", entry.Data["component"])
}

func TestNewLoggerWithConfig_InvalidLevelFallsBack(t *testing.T) {
	log := NewLoggerWithConfig("not-a-level", "text")
	assert.NotNil(t, log)
}
