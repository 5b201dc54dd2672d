// Package events allows websocket clients to register for feed messages
// and receive them.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
)

// messageBuffer is the number of messages held for a client that is slow
// to read. Messages beyond this are dropped for that client.
const messageBuffer = 100

// Events maintains a mapping of unique id and channels so websocket
// clients can register and receive feed messages.
type Events struct {
	mu sync.RWMutex
	m  map[string]chan []byte
}

// New constructs an events value for registering and receiving messages.
func New() *Events {
	return &Events{
		m: make(map[string]chan []byte),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used
// to receive messages.
func (evt *Events) Acquire(id string) <-chan []byte {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	ch = make(chan []byte, messageBuffer)
	evt.m[id] = ch

	return ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)

	return nil
}

// Send signals a message to every registered channel and returns the number
// of clients that accepted it. Send will not block waiting for a receiver.
func (evt *Events) Send(msg []byte) int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	var sent int
	for _, ch := range evt.m {
		select {
		case ch <- msg:
			sent++
		default:
		}
	}

	return sent
}

// SendJSON marshals the value once and sends it to every registered channel.
func (evt *Events) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	evt.Send(data)
	return nil
}

// Len returns the number of registered clients.
func (evt *Events) Len() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}
