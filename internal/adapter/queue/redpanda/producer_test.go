package redpanda_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/queue/redpanda"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()
	_, err := redpanda.NewProducer(nil, "training.evaluations")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed brokers")
}

func TestNewProducer_RequiresTopic(t *testing.T) {
	t.Parallel()
	_, err := redpanda.NewProducer([]string{"localhost:9092"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic")
}
