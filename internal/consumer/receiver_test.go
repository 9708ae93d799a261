package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockQueueConsumer is a mock implementation of queue.QueueConsumer
type MockQueueConsumer struct {
	mock.Mock
}

func (m *MockQueueConsumer) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) QueueURL() string {
	args := m.Called()
	return args.String(0)
}

func testReceiverConfig() ReceiverConfig {
	return ReceiverConfig{
		MaxMessages:     10,
		WaitTimeSeconds: 1,
		BufferSize:      10,
	}
}

func TestReceiver_Start_Success(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	log := zap.NewNop()

	receiver := NewReceiver(mockConsumer, testReceiverConfig(), log)

	messages := []types.Message{
		{
			MessageId:     aws.String("msg-1"),
			Body:          aws.String(`{"record_type": "event", "event_id": "evt_1"}`),
			ReceiptHandle: aws.String("receipt-1"),
		},
		{
			MessageId:     aws.String("msg-2"),
			Body:          aws.String(`{"record_type": "event", "event_id": "evt_2"}`),
			ReceiptHandle: aws.String("receipt-2"),
		},
	}

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/test-queue")
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(&sqs.ReceiveMessageOutput{Messages: messages}, nil).Once()
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{}}, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan types.Message, 10)

	go receiver.Start(ctx, out)

	var received []types.Message
	timeout := time.After(500 * time.Millisecond)
	for len(received) < 2 {
		select {
		case msg := <-out:
			received = append(received, msg)
		case <-timeout:
			t.Fatal("Timed out waiting for messages")
		}
	}

	cancel()

	assert.Len(t, received, 2)
	assert.Equal(t, "msg-1", *received[0].MessageId)
	assert.Equal(t, "msg-2", *received[1].MessageId)
}

func TestReceiver_Start_ReceiveError(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	log := zap.NewNop()

	receiver := NewReceiver(mockConsumer, testReceiverConfig(), log)

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/test-queue")
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(nil, errors.New("SQS unavailable"))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	out := make(chan types.Message, 10)

	go receiver.Start(ctx, out)

	select {
	case msg, ok := <-out:
		if ok {
			t.Fatalf("Expected no messages on receive error, got: %v", msg)
		}
	case <-time.After(300 * time.Millisecond):
	}

	mockConsumer.AssertCalled(t, "ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput"))
}

func TestReceiver_Start_ContextCancellation(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	log := zap.NewNop()

	receiver := NewReceiver(mockConsumer, testReceiverConfig(), log)

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/test-queue").Maybe()
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{}}, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan types.Message, 10)

	done := make(chan struct{})
	go func() {
		receiver.Start(ctx, out)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Receiver did not shut down after context cancellation")
	}

	_, ok := <-out
	assert.False(t, ok, "Output channel should be closed after shutdown")
}

func TestReceiver_Start_EmptyMessages(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	log := zap.NewNop()

	receiver := NewReceiver(mockConsumer, testReceiverConfig(), log)

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/test-queue")
	mockConsumer.On("ReceiveMessages", mock.Anything, mock.AnythingOfType("*sqs.ReceiveMessageInput")).
		Return(&sqs.ReceiveMessageOutput{Messages: []types.Message{}}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	out := make(chan types.Message, 10)

	go receiver.Start(ctx, out)

	select {
	case msg, ok := <-out:
		if ok {
			t.Fatalf("Expected no messages for empty receive, got: %v", msg)
		}
	case <-time.After(300 * time.Millisecond):
	}
}
