package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchSubject(t *testing.T) {
	tests := []struct {
		pattern string
		subject string
		want    bool
	}{
		{"verification.>", "verification.approved", true},
		{"verification.>", "verification", false},
		{"verification.*", "verification.approved", true},
		{"verification.*", "verification.a.b", false},
		{"verification.approved", "verification.approved", true},
		{"verification.approved", "verification.rejected", false},
		{"*.approved", "verification.approved", true},
		{">", "anything.at.all", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"_"+tt.subject, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchSubject(tt.pattern, tt.subject))
		})
	}
}

func TestNewEvent(t *testing.T) {
	event, err := NewEvent("verification.approved", "secureverify", map[string]string{"user_id": "u1"})
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "verification.approved", event.Type)
	assert.Equal(t, "secureverify", event.Source)
	assert.False(t, event.Timestamp.IsZero())

	var data map[string]string
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Equal(t, "u1", data["user_id"])
}

func TestNew_EmptyURLUsesLocalBus(t *testing.T) {
	bus, err := New("", "secureverify")
	require.NoError(t, err)
	assert.Nil(t, bus.Conn())
	assert.True(t, bus.IsConnected())
	assert.Equal(t, "secureverify", bus.Source())
}

func TestLocalBus_DeliversToMatchingSubscribers(t *testing.T) {
	bus := NewLocal("test")
	ctx := context.Background()

	var got []string
	require.NoError(t, bus.Subscribe(ctx, "verification.>", "", func(_ context.Context, e *Event) error {
		got = append(got, "wildcard:"+e.Type)
		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx, "verification.approved", "", func(_ context.Context, e *Event) error {
		got = append(got, "exact:"+e.Type)
		return nil
	}))

	event, err := NewEvent("verification.rejected", "test", nil)
	require.NoError(t, err)
	require.NoError(t, bus.Publish(ctx, "verification.rejected", event))

	assert.Equal(t, []string{"wildcard:verification.rejected"}, got)
}

func TestLocalBus_QueueGroupDeliversOnce(t *testing.T) {
	bus := NewLocal("test")
	ctx := context.Background()

	calls := 0
	handler := func(_ context.Context, _ *Event) error {
		calls++
		return nil
	}
	require.NoError(t, bus.Subscribe(ctx, "verification.>", "notifications", handler))
	require.NoError(t, bus.Subscribe(ctx, "verification.>", "notifications", handler))

	event, _ := NewEvent("verification.reset", "test", nil)
	require.NoError(t, bus.Publish(ctx, "verification.reset", event))

	assert.Equal(t, 1, calls)
}

func TestLocalBus_HandlerErrorDoesNotFailPublish(t *testing.T) {
	bus := NewLocal("test")
	ctx := context.Background()

	require.NoError(t, bus.Subscribe(ctx, "verification.>", "", func(_ context.Context, _ *Event) error {
		return errors.New("boom")
	}))

	event, _ := NewEvent("verification.approved", "test", nil)
	assert.NoError(t, bus.Publish(ctx, "verification.approved", event))
}

func TestLocalBus_Closed(t *testing.T) {
	bus := NewLocal("test")
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	assert.False(t, bus.IsConnected())

	event, _ := NewEvent("verification.approved", "test", nil)
	assert.Error(t, bus.Publish(context.Background(), "verification.approved", event))
	assert.Error(t, bus.Subscribe(context.Background(), "x", "", nil))
}
