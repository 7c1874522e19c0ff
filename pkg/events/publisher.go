package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

// Event types emitted by the portal
const (
	TypeProjectCreated       = "project.created"
	TypeProjectActivated     = "project.activated"
	TypeProjectFunded        = "project.funded"
	TypeProjectArchived      = "project.archived"
	TypeFundingRecorded      = "funding.recorded"
	TypeReproducibilityAdded = "reproducibility.submitted"
	TypeReproducibilityFlag  = "reproducibility.disputed"
)

// Event is a domain event fanned out to external subscribers
type Event struct {
	Type       string         `json:"type"`
	ProjectID  string         `json:"project_id,omitempty"`
	Wallet     string         `json:"wallet,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type snsPublisher struct {
	client   snsAPI
	topicARN string
}

// NewSNSPublisher publishes events to an SNS topic using the default AWS credential chain
func NewSNSPublisher(ctx context.Context, region, topicARN string) (Publisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &snsPublisher{client: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

func (p *snsPublisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Type),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// LogPublisher records events in the application log and keeps the most recent ones in memory
type LogPublisher struct {
	logger *zap.Logger
	mu     sync.Mutex
	recent []Event
	limit  int
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger, limit: 100}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.Info("Domain event",
		zap.String("type", event.Type),
		zap.String("project_id", event.ProjectID),
		zap.String("wallet", event.Wallet))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.recent = append(p.recent, event)
	if len(p.recent) > p.limit {
		p.recent = p.recent[len(p.recent)-p.limit:]
	}
	return nil
}

// Recent returns a copy of the retained events, oldest first
func (p *LogPublisher) Recent() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.recent))
	copy(out, p.recent)
	return out
}
