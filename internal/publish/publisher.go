package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"launchScope/internal/model"
	"launchScope/internal/pipeline"
)

// SubjectEnriched is the subject suffix of completed enrichments.
const SubjectEnriched = "enriched"

// Conn is the subset of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

// Config holds the configuration for the NATS connection.
type Config struct {
	URL            string
	Subject        string
	ConnectionName string
	MaxReconnects  int
	ReconnectWait  time.Duration
}

// Publisher fans classified events out to NATS subjects named <subject>.<kind>.
type Publisher struct {
	conn    Conn
	subject string
	logger  *zap.Logger
}

// Connect dials NATS and returns a publisher on cfg.Subject.
func Connect(cfg Config, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("disconnected from nats", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("reconnected to nats", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return New(nc, cfg.Subject, logger), nil
}

func New(conn Conn, subject string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if subject == "" {
		subject = "launches"
	}
	return &Publisher{conn: conn, subject: strings.TrimRight(subject, "."), logger: logger}
}

// Subject returns the subject of an event kind, e.g. launches.token_creation.
func (p *Publisher) Subject(kind string) string {
	return p.subject + "." + strings.ToLower(kind)
}

// Publish sends one classified event.
func (p *Publisher) Publish(ev model.ClassifiedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(string(ev.Kind)), data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// PublishOutcome sends a completed enrichment to <subject>.enriched.
func (p *Publisher) PublishOutcome(out pipeline.Outcome) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	if err := p.conn.Publish(p.Subject(SubjectEnriched), data); err != nil {
		return fmt.Errorf("publish outcome: %w", err)
	}
	return nil
}

// Handler returns a subscriber that publishes every event and logs failures.
func (p *Publisher) Handler() func(model.ClassifiedEvent) {
	return func(ev model.ClassifiedEvent) {
		if err := p.Publish(ev); err != nil {
			p.logger.Warn("publish failed", zap.String("tx_hash", ev.Tx.Hash), zap.Error(err))
		}
	}
}

func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}
	p.conn.Close()
}
