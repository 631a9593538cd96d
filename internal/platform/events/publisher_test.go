package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRedis struct {
	channel string
	message []byte
	err     error
}

func (s *stubRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	s.channel = channel
	s.message, _ = message.([]byte)
	return redis.NewIntResult(1, s.err)
}

func TestRedisPublisher_Publish(t *testing.T) {
	stub := &stubRedis{}
	p := newRedisPublisher(stub, "")

	event := NewEvent("assessment.completed", map[string]string{"patientId": "p-1"})
	require.NoError(t, p.Publish(context.Background(), event))

	assert.Equal(t, DefaultChannel, stub.channel)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(stub.message, &decoded))
	assert.Equal(t, event.ID, decoded["id"])
	assert.Equal(t, "assessment.completed", decoded["type"])
	assert.Equal(t, map[string]interface{}{"patientId": "p-1"}, decoded["payload"])
}

func TestRedisPublisher_PublishError(t *testing.T) {
	boom := errors.New("connection refused")
	p := newRedisPublisher(&stubRedis{err: boom}, "custom")

	err := p.Publish(context.Background(), NewEvent("assessment.completed", nil))
	assert.ErrorIs(t, err, boom)
}

func TestRedisPublisher_MarshalError(t *testing.T) {
	stub := &stubRedis{}
	p := newRedisPublisher(stub, "custom")

	err := p.Publish(context.Background(), NewEvent("bad", make(chan int)))
	assert.Error(t, err)
	assert.Empty(t, stub.channel)
}

func TestNewEvent(t *testing.T) {
	a := NewEvent("x", nil)
	b := NewEvent("x", nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.OccurredAt.IsZero())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent("x", nil)))
}
