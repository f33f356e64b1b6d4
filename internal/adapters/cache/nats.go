package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"clubevents/internal/domain"
)

// RevalidateSubject is the NATS subject carrying invalidated paths between instances.
const RevalidateSubject = "clubevents.revalidate"

type revalidateMessage struct {
	Origin string   `json:"origin"`
	Paths  []string `json:"paths"`
}

// Broadcaster invalidates the local cache and tells other instances to do the same.
type Broadcaster struct {
	local  domain.PageInvalidator
	conn   *nats.Conn
	sub    *nats.Subscription
	origin string
	logger *slog.Logger
}

var _ domain.PageInvalidator = (*Broadcaster)(nil)

// NewBroadcaster connects to NATS at url and subscribes to RevalidateSubject.
// origin identifies this instance so it skips its own messages.
func NewBroadcaster(url, origin string, local domain.PageInvalidator, logger *slog.Logger) (*Broadcaster, error) {
	nc, err := nats.Connect(url,
		nats.Name("clubevents-"+origin),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	b := &Broadcaster{local: local, conn: nc, origin: origin, logger: logger}
	sub, err := nc.Subscribe(RevalidateSubject, b.handle)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribing to %s: %w", RevalidateSubject, err)
	}
	if err := nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		nc.Close()
		return nil, fmt.Errorf("flushing subscription: %w", err)
	}
	b.sub = sub
	return b, nil
}

func (b *Broadcaster) handle(msg *nats.Msg) {
	var m revalidateMessage
	if err := json.Unmarshal(msg.Data, &m); err != nil {
		b.logger.Warn("malformed revalidate message", "err", err)
		return
	}
	if m.Origin == b.origin {
		return
	}
	_ = b.local.Invalidate(context.Background(), m.Paths...)
	b.logger.Debug("revalidated from peer", "origin", m.Origin, "paths", m.Paths)
}

// Invalidate drops paths locally, then publishes them. A publish failure is
// returned but the local cache is already clean.
func (b *Broadcaster) Invalidate(ctx context.Context, paths ...string) error {
	if err := b.local.Invalidate(ctx, paths...); err != nil {
		return err
	}
	data, err := json.Marshal(revalidateMessage{Origin: b.origin, Paths: paths})
	if err != nil {
		return fmt.Errorf("marshaling revalidate message: %w", err)
	}
	if err := b.conn.Publish(RevalidateSubject, data); err != nil {
		return fmt.Errorf("publishing revalidate message: %w", err)
	}
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (b *Broadcaster) Close() error {
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
	}
	b.conn.Close()
	return nil
}
