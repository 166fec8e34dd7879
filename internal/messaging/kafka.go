package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/config"
	"github.com/temcen/tastematch/pkg/models"
)

const (
	WeeklyMatchesTopic = "weekly-matches"
	ConsumerGroup      = "match-notifiers"
)

// MatchNotification is the body of a weekly-matches message.
type MatchNotification struct {
	EventID         uuid.UUID             `json:"event_id"`
	MatchID         string                `json:"match_id"`
	UserID          string                `json:"user_id"`
	MatchedUserID   string                `json:"matched_user_id"`
	WeekID          string                `json:"week_id"`
	SimilarityScore float64               `json:"similarity_score"`
	SharedArtists   []models.SharedArtist `json:"shared_artists"`
	SharedGenres    []string              `json:"shared_genres"`
	CreatedAt       time.Time             `json:"created_at"`
}

func NewMatchNotification(record models.MatchRecord) MatchNotification {
	return MatchNotification{
		EventID:         uuid.New(),
		MatchID:         record.ID,
		UserID:          record.UserID,
		MatchedUserID:   record.MatchedUserID,
		WeekID:          record.WeekID,
		SimilarityScore: record.SimilarityScore,
		SharedArtists:   record.SharedArtists,
		SharedGenres:    record.SharedGenres,
		CreatedAt:       record.CreatedAt,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MatchPublisher writes one notification per match record, keyed by the
// recipient so a user's notifications stay ordered on one partition.
type MatchPublisher struct {
	writer messageWriter
	topic  string
	logger *logrus.Logger
}

func NewMatchPublisher(cfg *config.Config, logger *logrus.Logger) *MatchPublisher {
	topic := cfg.Kafka.Topics.WeeklyMatches
	if topic == "" {
		topic = WeeklyMatchesTopic
	}

	return &MatchPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Kafka.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		topic:  topic,
		logger: logger,
	}
}

func (p *MatchPublisher) PublishMatch(ctx context.Context, record models.MatchRecord) error {
	notification := NewMatchNotification(record)

	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(record.UserID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(notification.EventID.String())},
			{Key: "week_id", Value: []byte(record.WeekID)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.WithError(err).WithField("match_id", record.ID).Error("Failed to publish match notification")
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"match_id": record.ID,
		"user_id":  record.UserID,
		"week_id":  record.WeekID,
		"topic":    p.topic,
	}).Debug("Match notification published")

	return nil
}

func (p *MatchPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	return nil
}

// MatchConsumer reads notifications back, e.g. for delivery workers or
// the CLI's watch command.
type MatchConsumer struct {
	reader *kafka.Reader
	logger *logrus.Logger
}

func NewMatchConsumer(cfg *config.Config, groupID string, logger *logrus.Logger) *MatchConsumer {
	if groupID == "" {
		groupID = ConsumerGroup
	}
	topic := cfg.Kafka.Topics.WeeklyMatches
	if topic == "" {
		topic = WeeklyMatchesTopic
	}

	return &MatchConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Kafka.Brokers,
			Topic:          topic,
			GroupID:        groupID,
			MinBytes:       1,
			MaxBytes:       10e6, // 10MB
			CommitInterval: time.Second,
			StartOffset:    kafka.LastOffset,
		}),
		logger: logger,
	}
}

// Consume calls handler for each notification until ctx ends. Malformed
// messages are logged and skipped.
func (c *MatchConsumer) Consume(ctx context.Context, handler func(MatchNotification) error) error {
	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.WithError(err).Error("Failed to read message from Kafka")
			continue
		}

		notification, err := DecodeMatchNotification(message.Value)
		if err != nil {
			c.logger.WithError(err).WithField("offset", message.Offset).Warn("Skipping malformed match notification")
			continue
		}

		if err := handler(notification); err != nil {
			c.logger.WithError(err).WithField("match_id", notification.MatchID).Error("Match notification handler failed")
		}
	}
}

func (c *MatchConsumer) Close() error {
	return c.reader.Close()
}

func DecodeMatchNotification(body []byte) (MatchNotification, error) {
	var notification MatchNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		return MatchNotification{}, fmt.Errorf("failed to unmarshal match notification: %w", err)
	}
	if notification.MatchID == "" || notification.UserID == "" {
		return MatchNotification{}, fmt.Errorf("match notification missing match_id or user_id")
	}
	return notification, nil
}
