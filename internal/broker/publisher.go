// Package broker publishes journaled records to a RabbitMQ topic exchange so
// indexers and front ends can follow ledgers without polling.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Ryfitz11/NFT-Tickets/internal/domain"
)

// ErrNotConfirmed is returned when the broker nacks a publish.
var ErrNotConfirmed = errors.New("broker did not confirm publish")

// confirmation is the part of amqp.DeferredConfirmation Deliver waits on.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type Publisher struct {
	url      string
	exchange string
	logger   *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher returns a publisher that connects lazily on first delivery.
func NewPublisher(url, exchange string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{url: url, exchange: exchange, logger: logger}
}

func (p *Publisher) Name() string { return "amqp" }

// Connect dials the broker, declares the durable topic exchange and puts the
// channel into confirm mode.
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ensureConnection()
}

func (p *Publisher) ensureConnection() error {
	if p.conn != nil && !p.conn.IsClosed() && p.channel != nil && !p.channel.IsClosed() {
		return nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if p.exchange != "" {
		err = ch.ExchangeDeclare(
			p.exchange,
			amqp.ExchangeTopic,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
		}
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("enable publisher confirms: %w", err)
	}

	p.conn = conn
	p.channel = ch
	p.logger.Info("broker connected", "exchange", p.exchange)
	return nil
}

// Deliver publishes rec with its kind as routing key and returns once the
// broker has acked it. A failed or nacked publish drops the connection so the
// next attempt reconnects.
func (p *Publisher) Deliver(ctx context.Context, rec domain.Record) error {
	msg, err := Message(rec)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ensureConnection(); err != nil {
		return err
	}

	conf, err := p.channel.PublishWithDeferredConfirmWithContext(ctx,
		p.exchange,
		string(rec.Kind),
		false,
		false,
		msg,
	)
	if err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", rec.Kind, err)
	}
	var pending confirmation
	if conf != nil {
		pending = conf
	}
	if err := awaitConfirm(ctx, pending); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", rec.Kind, err)
	}
	p.logger.Debug("published record", "kind", string(rec.Kind), "seq", rec.Seq)
	return nil
}

func awaitConfirm(ctx context.Context, conf confirmation) error {
	if conf == nil {
		return ErrNotConfirmed
	}
	acked, err := conf.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return ErrNotConfirmed
	}
	return nil
}

// Message builds the AMQP message for rec.
func Message(rec domain.Record) (amqp.Publishing, error) {
	body, err := json.Marshal(Envelope{
		ID:        rec.ID,
		Seq:       rec.Seq,
		Ledger:    rec.Ledger,
		Kind:      string(rec.Kind),
		Timestamp: rec.Timestamp,
		Payload:   rec.Payload,
		Hash:      rec.Hash,
		PrevHash:  rec.PrevHash,
	})
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode record %d: %w", rec.Seq, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    rec.ID,
		Type:         string(rec.Kind),
		Timestamp:    time.Unix(rec.Timestamp, 0).UTC(),
		Headers: amqp.Table{
			"ledger": rec.Ledger.String(),
			"seq":    int64(rec.Seq),
		},
		Body: body,
	}, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var err error
	if p.channel != nil {
		err = p.channel.Close()
	}
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	p.channel = nil
	p.conn = nil
	return err
}

func (p *Publisher) reset() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.channel = nil
	p.conn = nil
}
