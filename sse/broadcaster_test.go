package sse

import (
	"SalvadoDental/models"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_SubscribeAndBroadcast(t *testing.T) {
	b := NewBroadcaster()
	first, unsubscribeFirst := b.Subscribe()
	second, unsubscribeSecond := b.Subscribe()
	defer unsubscribeSecond()

	assert.Equal(t, 2, b.ClientCount())

	b.Broadcast("hello")
	assert.Equal(t, "hello", <-first)
	assert.Equal(t, "hello", <-second)

	unsubscribeFirst()
	unsubscribeFirst()
	assert.Equal(t, 1, b.ClientCount())

	_, open := <-first
	assert.False(t, open, "unsubscribed channel must be closed")
}

func TestBroadcaster_DropsForSlowClient(t *testing.T) {
	b := NewBroadcaster()
	client, unsubscribe := b.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < clientBuffer+5; i++ {
			b.Broadcast("tick")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a slow client")
	}
	assert.Len(t, client, clientBuffer)
}

func TestBroadcaster_Publish(t *testing.T) {
	b := NewBroadcaster()
	client, unsubscribe := b.Subscribe()
	defer unsubscribe()

	b.Publish(models.ChangeEvent{
		Type:        models.EventAppointmentAccepted,
		Appointment: &models.Appointment{ID: "a1", Status: models.StatusAccepted},
	})

	var event models.ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(<-client), &event))
	assert.Equal(t, models.EventAppointmentAccepted, event.Type)
	assert.Equal(t, "a1", event.Appointment.ID)
}
