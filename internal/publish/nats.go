package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/mtokuda/honeysift/internal/insight"
)

// DefaultSubject is where insight reports are published when no subject is
// configured.
const DefaultSubject = "honeypot.insights"

// Publisher pushes finished insight reports to downstream consumers. The
// analyzer treats publishing as best effort: a nil Publisher disables it and
// publish errors never fail a cycle.
type Publisher interface {
	PublishReport(ctx context.Context, ts int64, report *insight.Report) error
	Close()
}

type reportMessage struct {
	Timestamp int64           `json:"timestamp"`
	Report    *insight.Report `json:"report"`
}

// NATS publishes reports as JSON on a fixed subject.
type NATS struct {
	nc      *nats.Conn
	subject string
	log     *slog.Logger
}

func ConnectNATS(url, subject string, logger *slog.Logger) (*NATS, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url, nats.Name("honeysift"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &NATS{nc: nc, subject: subject, log: logger}, nil
}

func (p *NATS) PublishReport(ctx context.Context, ts int64, report *insight.Report) error {
	data, err := json.Marshal(reportMessage{Timestamp: ts, Report: report})
	if err != nil {
		return fmt.Errorf("marshal report message: %w", err)
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return p.nc.FlushWithContext(ctx)
}

func (p *NATS) Close() {
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("drain nats connection", "error", err)
	}
}
