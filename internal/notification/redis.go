package notification

import (
	"context"

	"interview-booking/pkg/utils"

	"github.com/go-redis/redis/v8"
)

// RedisPublisher implements LivePublisher over redis pub/sub. Session
// processes subscribe to the role/user channels they serve.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(config utils.RedisConfig) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisPublisher{client: client}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
