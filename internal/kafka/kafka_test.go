package kafka

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func closedAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

func TestWaitKafkaReady_OutOfAttempts(t *testing.T) {
	err := WaitKafkaReady(context.Background(), closedAddr(t), 2, time.Millisecond)
	require.Error(t, err)
}

func TestWaitKafkaReady_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitKafkaReady(ctx, closedAddr(t), 5, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestTopicErrors(t *testing.T) {
	ok := &kafkago.CreateTopicsResponse{Errors: map[string]error{
		"a": nil,
		"b": kafkago.TopicAlreadyExists,
	}}
	require.NoError(t, topicErrors(ok))

	bad := &kafkago.CreateTopicsResponse{Errors: map[string]error{
		"a": nil,
		"c": kafkago.InvalidReplicationFactor,
	}}
	err := topicErrors(bad)
	require.Error(t, err)
	require.True(t, errors.Is(err, kafkago.InvalidReplicationFactor))
}
