package natsclient

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

const (
	SubjectSubtopicFilled = "course.subtopic.filled"
	SubjectScoreRecorded  = "performance.score.recorded"
)

type NatsClient struct {
	Conn *nats.Conn
}

func NewNatsClient(natsURL string) (*NatsClient, error) {
	nc, err := nats.Connect(natsURL, nats.Name("coursegen"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, err
	}
	return &NatsClient{Conn: nc}, nil
}

func (n *NatsClient) Close() {
	if n.Conn != nil {
		_ = n.Conn.Drain()
	}
}

func (n *NatsClient) Publish(subject string, data []byte) error {
	return n.Conn.Publish(subject, data)
}

func (n *NatsClient) PublishJSON(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", subject, err)
	}
	return n.Conn.Publish(subject, data)
}

// QueueSubscribe spreads messages of a subject across every replica in group.
func (n *NatsClient) QueueSubscribe(subject, group string, handler func(*nats.Msg)) (*nats.Subscription, error) {
	return n.Conn.QueueSubscribe(subject, group, handler)
}
