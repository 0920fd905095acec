package chathub

import (
	"encoding/json"
	"log"

	"aegischat/backend/internal/models"
)

// StartPubSubListener drains the Redis event channel into the hub loop.
// Mutations are published only after they commit, so anything arriving
// here is already persisted.
func (m *ManagerService) StartPubSubListener() {
	go func() {
		pubsub := m.Storage.SubscribeEvents()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var event models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("Error unmarshalling bus event: %v", err)
				continue
			}
			m.PubSubCh <- event
		}
	}()
}
