package queue

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/hxrushing/sdk-platform/internal/dto"
)

// QueuePublisher defines the interface for publishing tracked events to
// the ingestion queue
type QueuePublisher interface {
	PublishEvent(ctx context.Context, event *dto.TrackEventRequest) error
}

// QueueConsumer defines the interface for consuming messages from the
// ingestion queue
type QueueConsumer interface {
	ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	QueueURL() string
}
