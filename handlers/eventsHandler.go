package handlers

import (
	"SalvadoDental/middlewares"
	"SalvadoDental/services"
	"SalvadoDental/sse"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// heartbeatInterval keeps idle event streams open through proxies.
const heartbeatInterval = 25 * time.Second

type EventsHandler struct {
	broadcaster  *sse.Broadcaster
	appointments *services.AppointmentService
	tickInterval time.Duration
	clock        func() time.Time
}

func NewEventsHandler(broadcaster *sse.Broadcaster, appointments *services.AppointmentService) *EventsHandler {
	return &EventsHandler{
		broadcaster:  broadcaster,
		appointments: appointments,
		tickInterval: time.Second,
		clock:        time.Now,
	}
}

// StreamEvents relays appointment and schedule changes to a doctor's dashboard.
func (h *EventsHandler) StreamEvents(c *gin.Context) {
	messages, unsubscribe := h.broadcaster.Subscribe()
	defer unsubscribe()

	middlewares.PrepareEventStream(c)
	writeEvent(c.Writer, "connected", "connected")
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case message, ok := <-messages:
			if !ok {
				return
			}
			writeEvent(c.Writer, "change", message)
			c.Writer.Flush()
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": ping\n\n")
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

// StreamCountdown emits the time left until an accepted appointment once per
// tick. The stream ends after the arrival event or when the client leaves.
func (h *EventsHandler) StreamCountdown(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	target, err := h.appointments.CountdownTarget(c.Request.Context(), c.Param("appointment_id"), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	middlewares.PrepareEventStream(c)
	for tick := range services.StartCountdown(c.Request.Context(), target, h.tickInterval, h.clock) {
		payload, err := json.Marshal(tick)
		if err != nil {
			return
		}
		name := "countdown"
		if tick.Arrived {
			name = "arrived"
		}
		writeEvent(c.Writer, name, string(payload))
		c.Writer.Flush()
	}
}

func writeEvent(w io.Writer, name, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
}
