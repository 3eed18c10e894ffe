// Package kafka provides methods for initiating kafka-topics for the app and a kafka readiness-probing
package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"
)

// InitKafkaTopics - creates topics in kafka, an already existing topic counts as created
func InitKafkaTopics(ctx context.Context, brokerAddr string, delay time.Duration, attempts int, topics ...string) error {
	client := &kafkago.Client{
		Addr:    kafkago.TCP(brokerAddr),
		Timeout: 10 * time.Second,
	}

	req := kafkago.CreateTopicsRequest{
		Topics: make([]kafkago.TopicConfig, 0, len(topics)),
	}

	for _, t := range topics {
		topic := kafkago.TopicConfig{
			Topic:             t,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
		req.Topics = append(req.Topics, topic)
	}

	var lastErr error
	for i := 0; i < max(attempts, 1); i++ {
		resp, err := client.CreateTopics(ctx, &req)
		if err == nil {
			if lastErr = topicErrors(resp); lastErr == nil {
				zlog.Logger.Info().Strs("topics", topics).Msg("All topics created successfully!")
				return nil
			}
		} else {
			lastErr = err
		}

		zlog.Logger.Warn().Err(lastErr).Msgf("Failed to create topics, wait %v before next try...", delay)
		if err := wait(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("failed to create kafka topics: %w", lastErr)
}

func topicErrors(resp *kafkago.CreateTopicsResponse) error {
	var errs []error
	for k, v := range resp.Errors {
		if v == nil || errors.Is(v, kafkago.TopicAlreadyExists) {
			continue
		}
		errs = append(errs, fmt.Errorf("topic %q: %w", k, v))
	}
	return errors.Join(errs...)
}

// WaitKafkaReady - timeout given to kafka-service for getting fully functional
func WaitKafkaReady(ctx context.Context, brokerAddr string, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < max(attempts, 1); i++ {
		var conn *kafkago.Conn
		conn, err = kafkago.DialContext(ctx, "tcp", brokerAddr)
		if err == nil {
			if errConn := conn.Close(); errConn != nil {
				zlog.Logger.Warn().Err(errConn).Msg("Failed to close connection after testing Kafka readyness")
			}
			zlog.Logger.Info().Str("broker", brokerAddr).Msg("Kafka is ready!")
			return nil
		}

		zlog.Logger.Warn().Err(err).Msgf("Kafka not ready, retrying in %v...", delay)
		if err := wait(ctx, delay); err != nil {
			return err
		}
	}
	return fmt.Errorf("kafka broker %s is not reachable: %w", brokerAddr, err)
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
