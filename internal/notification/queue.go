package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"interview-booking/pkg/utils"

	"github.com/hibiken/asynq"
)

const TypeMessageDeliver = "message:deliver"

// AsynqQueue implements MessageQueue on an asynq/redis task queue.
type AsynqQueue struct {
	client *asynq.Client
}

func NewAsynqQueue(config utils.RedisConfig) *AsynqQueue {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.QueueDB,
	})
	return &AsynqQueue{client: client}
}

func (q *AsynqQueue) Enqueue(ctx context.Context, payload MessagePayload) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode message payload: %w", err)
	}

	task := asynq.NewTask(TypeMessageDeliver, b)
	if _, err := q.client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue delivery task: %w", err)
	}

	return nil
}

func (q *AsynqQueue) Close() error {
	return q.client.Close()
}
