package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversToAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventApproved, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.SubjectID)
		return errors.New("smtp down")
	})
	d.Subscribe(EventApproved, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventPasswordResetIssued, func(context.Context, Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	err := d.Publish(context.Background(), New(EventApproved, "ev-1", "admin-1", EventApprovedPayload{Title: "Holi"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Equal(t, []string{"first:ev-1", "second:ev-1"}, got)
}

func TestDispatcher_RecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := false
	d.Subscribe(EventStatusChanged, func(context.Context, Event) error {
		panic("template exploded")
	})
	d.Subscribe(EventStatusChanged, func(context.Context, Event) error {
		delivered = true
		return nil
	})
	d.Subscribe(EventStatusChanged, nil)

	err := d.Publish(context.Background(), New(EventStatusChanged, "ev-1", "admin-1", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template exploded")
	assert.True(t, delivered)
}

func TestDispatcher_NoListeners(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), New(EventStatusChanged, "ev-1", "", nil)))
}

func TestNew(t *testing.T) {
	e := New(EventApproved, "ev-1", "admin-1", nil)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "admin-1", e.ActorID)
}
