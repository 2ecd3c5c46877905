package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// OpenEvent is the message shape published for each recorded open. Consumed
// by the dashboard/mail-sender side; the beacon never waits on it.
type OpenEvent struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	OpenTime  time.Time `json:"open_time"`
}

// Publisher sends open events to SQS on a best-effort basis. A nil Publisher
// is valid and publishes nothing, so callers never need to branch on whether
// notification is configured.
type Publisher struct {
	client   *sqs.Client
	queueURL string
}

// NewPublisher creates a Publisher for the given queue.
func NewPublisher(client *sqs.Client, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL}
}

// Publish ships evt asynchronously. Failures are logged and dropped: the
// beacon response must never depend on the queue being reachable.
func (p *Publisher) Publish(ctx context.Context, evt OpenEvent) {
	if p == nil {
		return
	}

	body, err := json.Marshal(evt)
	if err != nil {
		log.Printf("ERROR marshal open event: %v", err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
			QueueUrl:    aws.String(p.queueURL),
			MessageBody: aws.String(string(body)),
		})
		if err != nil {
			log.Printf("ERROR publishing open event to SQS: %v", err)
		}
	}()
}
