// Package mq publishes snapshots and surge transitions to Kafka.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/portstack/surgeops/internal/models"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter builds a synchronous writer for one topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 250 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

// NewReader builds a consumer-group reader for one topic.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        time.Second,
	})
}

// PublishJSON marshals payload and writes it under key.
func PublishJSON(ctx context.Context, writer MessageWriter, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: body,
		Time:  time.Now().UTC(),
	})
}

// ParseMessageJSON decodes a message value.
func ParseMessageJSON[T any](msg kafka.Message) (T, error) {
	var payload T
	err := json.Unmarshal(msg.Value, &payload)
	return payload, err
}

// Publisher fans snapshots and transitions out to their topics.
type Publisher struct {
	snapshots   MessageWriter
	transitions MessageWriter
}

// NewPublisher creates a publisher writing to the given topics.
func NewPublisher(brokers []string, snapshotTopic, transitionTopic string) *Publisher {
	return NewPublisherWithWriters(NewWriter(brokers, snapshotTopic), NewWriter(brokers, transitionTopic))
}

// NewPublisherWithWriters wires explicit writers.
func NewPublisherWithWriters(snapshots, transitions MessageWriter) *Publisher {
	return &Publisher{snapshots: snapshots, transitions: transitions}
}

// PublishSnapshot writes a snapshot keyed by its generation time.
func (p *Publisher) PublishSnapshot(ctx context.Context, snap models.Snapshot) error {
	if err := PublishJSON(ctx, p.snapshots, snap.GeneratedAt.UTC().Format(time.RFC3339Nano), snap); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// PublishTransition writes a banner transition keyed by episode, so one
// episode stays on one partition.
func (p *Publisher) PublishTransition(ctx context.Context, t models.SurgeTransition) error {
	if err := PublishJSON(ctx, p.transitions, t.EpisodeID, t); err != nil {
		return fmt.Errorf("publish transition: %w", err)
	}
	return nil
}

// Close flushes and closes both writers.
func (p *Publisher) Close() error {
	return errors.Join(p.snapshots.Close(), p.transitions.Close())
}
