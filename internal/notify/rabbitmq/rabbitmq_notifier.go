// Package rabbitmq publishes analysis status updates to a RabbitMQ topic
// exchange. Consumers bind with "analysis.#" or "analysis.<id>".
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"talentmatch/internal/domain"
	"talentmatch/internal/port"
)

// Channel is the subset of *amqp.Channel the notifier needs.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// StatusMessage is the JSON body of a published update.
type StatusMessage struct {
	AnalysisID   string                `json:"analysis_id"`
	RecruiterID  string                `json:"recruiter_id"`
	CandidateID  string                `json:"candidate_id,omitempty"`
	Status       domain.AnalysisStatus `json:"status"`
	ParseSuccess bool                  `json:"parse_success"`
	Error        string                `json:"error,omitempty"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Notifier publishes to a single exchange over one channel.
type Notifier struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       Channel
	exchange string
}

// NewNotifier dials url and declares exchange as a durable topic exchange.
func NewNotifier(url, exchange string) (port.AnalysisNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declaring exchange %s: %w", exchange, err)
	}
	return &Notifier{conn: conn, ch: ch, exchange: exchange}, nil
}

// NewNotifierWithChannel creates a Notifier over an existing channel.
func NewNotifierWithChannel(ch Channel, exchange string) *Notifier {
	return &Notifier{ch: ch, exchange: exchange}
}

// RoutingKey returns the routing key for an analysis.
func RoutingKey(a *domain.ResumeAnalysis) string {
	return "analysis." + a.ID.String()
}

func (n *Notifier) PublishStatus(ctx context.Context, a *domain.ResumeAnalysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(StatusMessage{
		AnalysisID:   a.ID.String(),
		RecruiterID:  a.RecruiterID,
		CandidateID:  a.CandidateID,
		Status:       a.Status,
		ParseSuccess: a.ParseSuccess,
		Error:        a.ErrorMessage,
		UpdatedAt:    a.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encoding status message: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	err = n.ch.Publish(n.exchange, RoutingKey(a), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    a.ID.String(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publishing analysis %s: %w", a.ID, err)
	}
	return nil
}

func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	err := n.ch.Close()
	if n.conn != nil {
		if cerr := n.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
