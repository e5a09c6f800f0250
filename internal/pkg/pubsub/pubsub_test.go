package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountMessage_JSON(t *testing.T) {
	msg := &CountMessage{
		Type:        "view_count",
		PageType:    "blog",
		PageID:      "abc",
		TotalViews:  10,
		UniqueViews: 4,
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Contains(t, raw, "page_type")
	assert.Contains(t, raw, "total_views")
	assert.Contains(t, raw, "unique_views")
}

func TestNewPublisher_DefaultChannel(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	assert.Equal(t, DefaultChannel, NewPublisher(client, "").channel)
	assert.Equal(t, "custom", NewSubscriber(client, "custom").channel)
}

func TestPublisherSubscriber(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	publisher := NewPublisher(client, "test_counts")
	subscriber := NewSubscriber(client, "test_counts")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *CountMessage, 1)
	go subscriber.Subscribe(ctx, func(msg *CountMessage) {
		received <- msg
	})

	// 等待订阅建立
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("test_counts")["test_counts"] > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, publisher.PublishCount(ctx, &CountMessage{
		PageType:    "home",
		PageID:      "main",
		TotalViews:  3,
		UniqueViews: 2,
	}))

	select {
	case msg := <-received:
		assert.Equal(t, "view_count", msg.Type)
		assert.Equal(t, "home", msg.PageType)
		assert.Equal(t, int64(3), msg.TotalViews)
		assert.Equal(t, int64(2), msg.UniqueViews)
	case <-ctx.Done():
		t.Fatal("Timeout waiting for message")
	}
}
