package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	envConfig "github.com/BarkinBalci/customer-scoring-engine/internal/config"
	"github.com/BarkinBalci/customer-scoring-engine/internal/domain"
)

// Client represents an SQS client
type Client struct {
	client *sqs.Client
	config envConfig.SQS
	log    *zap.Logger
}

// NewClient creates a new SQS client
func NewClient(ctx context.Context, SQSConfig envConfig.SQS, log *zap.Logger) (*Client, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(SQSConfig.Region),
	}

	var clientOpts []func(*sqs.Options)

	// Configure for local development with ElasticMQ
	if SQSConfig.Endpoint != "" {
		log.Info("Configuring SQS for local development",
			zap.String("endpoint", SQSConfig.Endpoint))
		configOpts = append(configOpts,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("dummy", "dummy", "")))

		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(SQSConfig.Endpoint)
		})
	}

	cfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	sqsClient := sqs.NewFromConfig(cfg, clientOpts...)

	log.Info("SQS client created",
		zap.String("region", SQSConfig.Region),
		zap.String("queue_url", SQSConfig.QueueURL))

	return &Client{
		client: sqsClient,
		config: SQSConfig,
		log:    log,
	}, nil
}

// ReceiveMessages receives messages from SQS
func (c *Client) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	return c.client.ReceiveMessage(ctx, input)
}

// DeleteMessage deletes a message from SQS
func (c *Client) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	return c.client.DeleteMessage(ctx, input)
}

// QueueURL returns the configured queue URL
func (c *Client) QueueURL() string {
	return c.config.QueueURL
}

// PublishRecord publishes one ingestion record to SQS. The message body
// carries the record payload flattened alongside a record_type field; the
// consumer's parser dispatches on it.
func (c *Client) PublishRecord(ctx context.Context, record *domain.Record) error {
	body, recordID, err := messageBody(record)
	if err != nil {
		return err
	}

	bodyJSON, err := json.Marshal(body)
	if err != nil {
		c.log.Error("Failed to marshal record",
			zap.String("record_id", recordID),
			zap.String("record_type", string(record.Type)),
			zap.Error(err))
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.config.QueueURL),
		MessageBody: aws.String(string(bodyJSON)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"RecordType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(record.Type)),
			},
		},
	})
	if err != nil {
		c.log.Error("Failed to send message to SQS",
			zap.String("record_id", recordID),
			zap.String("record_type", string(record.Type)),
			zap.Error(err))
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	c.log.Info("Record published to SQS",
		zap.String("record_id", recordID),
		zap.String("record_type", string(record.Type)))

	return nil
}

func messageBody(record *domain.Record) (map[string]interface{}, string, error) {
	switch record.Type {
	case domain.RecordEvent:
		e := record.Event
		return map[string]interface{}{
			"record_type": string(domain.RecordEvent),
			"event_id":    e.EventID,
			"customer_id": e.CustomerID,
			"event_type":  e.EventType,
			"channel":     e.Channel,
			"campaign_id": e.CampaignID,
			"timestamp":   e.Timestamp,
			"value":       e.Value,
			"metadata":    e.Metadata,
		}, e.EventID, nil
	case domain.RecordTouchpoint:
		tp := record.Touchpoint
		return map[string]interface{}{
			"record_type":   string(domain.RecordTouchpoint),
			"touchpoint_id": tp.TouchpointID,
			"customer_id":   tp.CustomerID,
			"channel":       tp.Channel,
			"campaign_id":   tp.CampaignID,
			"occurred_at":   tp.OccurredAt,
		}, tp.TouchpointID, nil
	case domain.RecordConversion:
		conv := record.Conversion
		return map[string]interface{}{
			"record_type":    string(domain.RecordConversion),
			"conversion_id":  conv.ConversionID,
			"customer_id":    conv.CustomerID,
			"revenue_amount": conv.RevenueAmount,
			"occurred_at":    conv.OccurredAt,
			"window_start":   conv.WindowStart,
		}, conv.ConversionID, nil
	default:
		return nil, "", fmt.Errorf("unknown record type: %s", record.Type)
	}
}
