package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesSubscriber(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("client-1")
	defer unsubscribe()

	h.Publish("client-1", NewEvent(TypeStatus, "starting"))

	select {
	case ev := <-ch:
		assert.Equal(t, TypeStatus, ev.Type)
		assert.Equal(t, "starting", ev.Message)
		assert.NotEmpty(t, ev.Timestamp)
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestHub_PublishWithoutSubscribersDrops(t *testing.T) {
	h := NewHub()
	h.Publish("nobody", NewEvent(TypeStatus, "into the void"))
	assert.Equal(t, 0, h.SubscriberCount("nobody"))
}

func TestHub_EventsKeepEmissionOrder(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("client-1")
	defer unsubscribe()

	for i := 1; i <= 5; i++ {
		h.Publish("client-1", Event{Type: TypeProgress, Current: i, Total: 5})
	}

	for i := 1; i <= 5; i++ {
		ev := <-ch
		assert.Equal(t, i, ev.Current)
	}
}

func TestHub_SubscribersAreIsolatedByID(t *testing.T) {
	h := NewHub()
	chA, unsubA := h.Subscribe("a")
	defer unsubA()
	chB, unsubB := h.Subscribe("b")
	defer unsubB()

	h.Publish("a", NewEvent(TypeStatus, "for a"))

	ev := <-chA
	assert.Equal(t, "for a", ev.Message)

	select {
	case <-chB:
		t.Fatal("event leaked to another client id")
	default:
	}
}

func TestHub_SlowSubscriberDropsNewest(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("client-1")
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish("client-1", Event{Type: TypeProgress, Current: i})
	}

	// The buffer holds the oldest events; the overflow was dropped.
	require.Len(t, ch, subscriberBuffer)
	first := <-ch
	assert.Equal(t, 0, first.Current)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := NewHub()
	ch, unsubscribe := h.Subscribe("client-1")

	unsubscribe()
	unsubscribe() // idempotent

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.SubscriberCount("client-1"))
}

func TestHub_PublishAfterUnsubscribe(t *testing.T) {
	h := NewHub()
	_, unsubscribe := h.Subscribe("client-1")
	unsubscribe()

	// Must not panic on a closed channel.
	h.Publish("client-1", NewEvent(TypeStatus, "late"))
}
