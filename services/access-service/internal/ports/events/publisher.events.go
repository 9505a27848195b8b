// services/access-service/internal/ports/events/publisher.events.go
package events

import "context"

// Publisher is the outbound side of the access workflow. shared/kafka.KafkaProducer
// satisfies it; commands treat a nil Publisher as "events disabled".
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}
