// Package stream maintains the persistent websocket block subscription,
// reconnecting with jittered exponential backoff until its context ends.
package stream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"nathanbeddoewebdev/chainwatch/internal/domain"
	"nathanbeddoewebdev/chainwatch/internal/logging"
	"nathanbeddoewebdev/chainwatch/internal/retry"
)

// Protocol selects how frames on the connection are interpreted.
type Protocol string

const (
	// ProtocolRecords treats every text frame as one JSON block record.
	ProtocolRecords Protocol = "records"
	// ProtocolJSONRPC speaks Ethereum JSON-RPC and subscribes to newHeads.
	ProtocolJSONRPC Protocol = "jsonrpc"
)

const (
	DefaultURL      = "ws://localhost:8080"
	DefaultBackfill = 10

	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
)

// ParseProtocol validates a protocol name.
func ParseProtocol(s string) (Protocol, error) {
	switch p := Protocol(strings.ToLower(strings.TrimSpace(s))); p {
	case ProtocolRecords, ProtocolJSONRPC:
		return p, nil
	case "":
		return ProtocolJSONRPC, nil
	default:
		return "", fmt.Errorf("stream: unknown protocol %q", s)
	}
}

// Options configures a Stream. Zero values fall back to the defaults.
type Options struct {
	URL         string
	Protocol    Protocol
	Fields      RecordFields
	Backfill    int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	Logger      logrus.FieldLogger
}

// Stream is the block event producer.
type Stream struct {
	url       string
	protocol  Protocol
	fields    RecordFields
	backfill  int
	backoff   *retry.Backoff
	dialer    *websocket.Dialer
	log       logrus.FieldLogger
	decodeLog rate.Sometimes
	now       func() time.Time
}

// New creates a Stream from opts.
func New(opts Options) *Stream {
	s := &Stream{
		url:       opts.URL,
		protocol:  opts.Protocol,
		fields:    DefaultRecordFields().Override(opts.Fields),
		backfill:  opts.Backfill,
		backoff:   retry.NewBackoff(opts.BackoffBase, opts.BackoffMax),
		dialer:    &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
		log:       opts.Logger,
		decodeLog: rate.Sometimes{First: 3, Interval: 30 * time.Second},
		now:       time.Now,
	}
	if s.url == "" {
		s.url = DefaultURL
	}
	if s.protocol == "" {
		s.protocol = ProtocolJSONRPC
	}
	if s.backfill < 0 {
		s.backfill = 0
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	s.log = s.log.WithField("component", "stream")
	return s
}

// Source identifies the feed this producer reports on.
func (s *Stream) Source() domain.Source { return domain.SourceStream }

// Run connects and streams block events until ctx is done. Connection
// failures never end Run; they surface only as connection updates.
func (s *Stream) Run(ctx context.Context, out chan<- domain.Update) error {
	if err := s.report(ctx, out, domain.ConnectionState{Phase: domain.PhaseConnecting, Since: s.now()}); err != nil {
		return err
	}

	for {
		conn, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.WithError(err).WithField("attempt", s.backoff.Attempt()+1).Debug("dial failed")
			if err := s.waitReconnect(ctx, out, err); err != nil {
				return err
			}
			continue
		}

		s.backoff.Reset()
		s.log.WithField("url", s.url).Info("stream connected")
		if err := s.report(ctx, out, domain.Connected(s.now())); err != nil {
			conn.Close()
			return err
		}

		err = s.session(ctx, conn, out)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.log.WithError(err).Warn("stream disconnected, will attempt reconnection")
		if err := s.waitReconnect(ctx, out, err); err != nil {
			return err
		}
	}
}

// waitReconnect reports the pending reconnect and sleeps its delay.
func (s *Stream) waitReconnect(ctx context.Context, out chan<- domain.Update, cause error) error {
	delay := s.backoff.Next()
	st := domain.Reconnecting(s.now(), s.backoff.Attempt(), delay, cause)
	if err := s.report(ctx, out, st); err != nil {
		return err
	}
	if !retry.Sleep(ctx, delay) {
		return ctx.Err()
	}
	return nil
}

func (s *Stream) report(ctx context.Context, out chan<- domain.Update, st domain.ConnectionState) error {
	return domain.Send(ctx, out, domain.ConnectionUpdate{Source: domain.SourceStream, State: st})
}

func (s *Stream) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("stream: invalid url: %w", err)
	}
	if strings.HasPrefix(u.Scheme, "http") {
		u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	}

	conn, _, err := s.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("stream: websocket dial failed: %w", err)
	}
	return conn, nil
}

// session reads frames until the connection fails or ctx is done.
func (s *Stream) session(ctx context.Context, conn *websocket.Conn, out chan<- domain.Update) error {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	h := s.handler(conn)
	if err := h.start(); err != nil {
		return fmt.Errorf("stream: start session: %w: %w", domain.ErrDisconnected, err)
	}

	for {
		typ, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("stream: read: %w: %w", domain.ErrDisconnected, err)
		}
		if typ != websocket.TextMessage && typ != websocket.BinaryMessage {
			continue
		}

		updates, herr := h.handle(msg)
		for _, u := range updates {
			if err := domain.Send(ctx, out, u); err != nil {
				return err
			}
		}
		if herr != nil {
			var decErr *DecodeError
			if !errors.As(herr, &decErr) {
				return fmt.Errorf("stream: %w: %w", domain.ErrDisconnected, herr)
			}
			s.decodeLog.Do(func() {
				s.log.WithError(herr).Warn("dropped malformed message")
			})
		}
	}
}

// handler speaks one wire protocol over a single connection.
type handler interface {
	start() error
	handle(msg []byte) ([]domain.Update, error)
}

func (s *Stream) handler(conn *websocket.Conn) handler {
	if s.protocol == ProtocolRecords {
		return &recordHandler{fields: s.fields, now: s.now}
	}
	return newRPCHandler(wsWriter{conn}, s.backfill, s.now, s.log)
}

type recordHandler struct {
	fields RecordFields
	now    func() time.Time
}

func (h *recordHandler) start() error { return nil }

func (h *recordHandler) handle(msg []byte) ([]domain.Update, error) {
	ev, err := decodeRecord(msg, h.fields, h.now())
	if err != nil {
		return nil, err
	}
	return []domain.Update{domain.BlockUpdate{Event: ev}}, nil
}

// wsWriter serializes JSON requests onto the connection.
type wsWriter struct {
	conn *websocket.Conn
}

func (w wsWriter) writeJSON(v any) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return w.conn.WriteJSON(v)
}
