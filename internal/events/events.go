// Package events publishes run-lifecycle notifications over NATS so other
// lilac components can react to fresh insights without polling the store.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectRunStarted   = "lilac.insights.run.started"
	SubjectDayCompleted = "lilac.insights.run.day"
	SubjectRunCompleted = "lilac.insights.run.completed"
)

// RunStarted is emitted once at the start of a batch run.
type RunStarted struct {
	Days      int       `json:"days"`
	StartedAt time.Time `json:"started_at"`
}

// DayCompleted is emitted after each day's insights are persisted.
type DayCompleted struct {
	Day      string `json:"day"`
	Windows  int    `json:"windows"`
	Insights int    `json:"insights"`
}

// RunCompleted is emitted once when the run finishes, whether or not the
// meta-insight merge succeeded.
type RunCompleted struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	DayInsights int       `json:"day_insights"`
	MetaMerged  int       `json:"meta_merged"`
	FinishedAt  time.Time `json:"finished_at"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewPublisher(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Publisher{conn: nc, logger: logger}, nil
}

// Publish sends one event. A nil Publisher is a no-op so callers can hold an
// unconfigured publisher without guarding every call site.
func (p *Publisher) Publish(subject string, data any) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		p.logger.Warn("marshal event payload", "subject", subject, "error", err)
		return
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn("publish event", "subject", subject, "error", err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.conn.Close()
}
