package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const DefaultChannel = "portfolio:view_counts"

// CountMessage 聚合更新消息
type CountMessage struct {
	Type        string    `json:"type"`
	PageType    string    `json:"page_type"`
	PageID      string    `json:"page_id"`
	TotalViews  int64     `json:"total_views"`
	UniqueViews int64     `json:"unique_views"`
	LastUpdated time.Time `json:"last_updated"`
}

// Publisher Redis 发布者
type Publisher struct {
	client  *redis.Client
	channel string
}

// NewPublisher 创建发布者，channel 为空时使用默认频道
func NewPublisher(client *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: client, channel: channel}
}

// PublishCount 发布聚合更新
func (p *Publisher) PublishCount(ctx context.Context, msg *CountMessage) error {
	msg.Type = "view_count"

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal count message: %w", err)
	}

	return p.client.Publish(ctx, p.channel, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client  *redis.Client
	channel string
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client, channel string) *Subscriber {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Subscriber{client: client, channel: channel}
}

// Subscribe 订阅聚合更新，阻塞直到 ctx 结束
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*CountMessage)) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	// 等待订阅确认，避免之后的发布丢失
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var countMsg CountMessage
			if err := json.Unmarshal([]byte(msg.Payload), &countMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&countMsg)
		}
	}
}
