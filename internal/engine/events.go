package engine

import (
	"encoding/json"

	"snipercontrol/pkg/config"
)

// queueEventPublisher routes trade events onto a RabbitMQ queue.
type queueEventPublisher struct {
	pub   *config.Publisher
	queue string
}

// NewQueueEventPublisher adapts the RabbitMQ publisher to the engine's
// EventPublisher interface.
func NewQueueEventPublisher(pub *config.Publisher, queue string) EventPublisher {
	return &queueEventPublisher{pub: pub, queue: queue}
}

func (q *queueEventPublisher) Publish(body []byte) error {
	return q.pub.Publish(q.queue, json.RawMessage(body))
}
