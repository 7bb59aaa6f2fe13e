package sse

import (
	"SalvadoDental/models"
	"encoding/json"
	"log"
	"sync"
)

// clientBuffer is how many messages a slow client may fall behind before
// further messages to it are dropped.
const clientBuffer = 16

// Broadcaster manages SSE connections and broadcasts messages to all clients.
type Broadcaster struct {
	clients map[chan string]struct{}
	mu      sync.Mutex
}

// NewBroadcaster creates a new Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan string]struct{}),
	}
}

// Subscribe registers a new client and returns its channel together with the
// function that unregisters it.
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	client := make(chan string, clientBuffer)

	b.mu.Lock()
	b.clients[client] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return client, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.clients, client)
			close(client)
		})
	}
}

// Broadcast sends a message to all registered clients without blocking.
func (b *Broadcaster) Broadcast(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for client := range b.clients {
		select {
		case client <- message:
		default:
			log.Println("SSE client is not keeping up, dropping message")
		}
	}
}

// Publish encodes a change event and broadcasts it.
func (b *Broadcaster) Publish(event models.ChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", event.Type, err)
		return
	}
	b.Broadcast(string(payload))
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}
