package adapter

import (
	"bytes"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/bitdabbler/backoff"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/logfan/logfan/core"
)

// ForwardConfig configures a Forward adapter.
type ForwardConfig struct {
	// Addr is the host:port of the receiving collector.
	Addr string
	// Tag labels every event sent over the wire. Defaults to "logfan".
	Tag string
	// DialTimeout bounds a single connection attempt. Defaults to 5s.
	DialTimeout time.Duration
	// WriteTimeout bounds a single event write (0 = no deadline).
	WriteTimeout time.Duration
	// MaxDialAttempts bounds reconnection attempts per event (0 = one try,
	// the point being that a down collector must not wedge delivery).
	MaxDialAttempts int
}

// Forward ships events to a remote collector over TCP. Each event is a
// msgpack array of [tag, unix-seconds, record-map], in the style of the
// Fluent forward protocol's message mode.
type Forward struct {
	cfg ForwardConfig

	mu   sync.Mutex
	conn net.Conn
}

// NewForward dials the collector lazily; the first Handle call connects.
func NewForward(cfg ForwardConfig) (*Forward, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("forward adapter: addr is required")
	}
	if cfg.Tag == "" {
		cfg.Tag = "logfan"
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	return &Forward{cfg: cfg}, nil
}

// Handle implements dispatch.Adapter. A failed write tears the connection
// down so the next event triggers a reconnect.
func (a *Forward) Handle(formatted string, rec *core.Record) error {
	payload, err := encodeEvent(a.cfg.Tag, formatted, rec)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		if err := a.connect(); err != nil {
			return err
		}
	}

	if a.cfg.WriteTimeout > 0 {
		a.conn.SetWriteDeadline(time.Now().Add(a.cfg.WriteTimeout))
	}
	if _, err := a.conn.Write(payload); err != nil {
		a.conn.Close()
		a.conn = nil
		return fmt.Errorf("forward write to %s: %w", a.cfg.Addr, err)
	}
	return nil
}

func (a *Forward) connect() error {
	b, err := backoff.New(
		backoff.WithInitialDelay(0),
		backoff.WithExponentialLimit(20*time.Second),
	)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		conn, err := net.DialTimeout("tcp", a.cfg.Addr, a.cfg.DialTimeout)
		if err == nil {
			a.conn = conn
			return nil
		}
		lastErr = err

		if attempt >= a.cfg.MaxDialAttempts {
			break
		}
		b.Sleep()
	}
	return fmt.Errorf("forward dial %s: %w", a.cfg.Addr, lastErr)
}

func encodeEvent(tag, formatted string, rec *core.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)

	if err := enc.EncodeArrayLen(3); err != nil {
		return nil, err
	}
	if err := enc.EncodeString(tag); err != nil {
		return nil, err
	}
	if err := enc.EncodeInt(rec.Time.Unix()); err != nil {
		return nil, err
	}
	event := map[string]string{
		"category":  rec.Category,
		"severity":  rec.Level.String(),
		"message":   rec.Message,
		"formatted": formatted,
	}
	if err := enc.Encode(event); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close shuts the connection down; subsequent Handle calls reconnect.
func (a *Forward) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	return err
}
