// Package streaming follows the user stream of the Mastodon streaming API
// and turns deletions and edits into cache events.
package streaming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/tootcache/internal/client/client"
	"github.com/dmitrijs2005/tootcache/internal/client/events"
	"github.com/dmitrijs2005/tootcache/internal/client/metrics"
	"github.com/dmitrijs2005/tootcache/internal/client/models"
	"github.com/dmitrijs2005/tootcache/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	defaultRetryDelay = 5 * time.Second
	readTimeout       = 90 * time.Second
	pingInterval      = 30 * time.Second
)

// Publisher receives the translated events. *events.Bus implements it.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// message is one frame of the streaming API. Payload is itself JSON
// encoded as a string.
type message struct {
	Stream  []string `json:"stream"`
	Event   string   `json:"event"`
	Payload string   `json:"payload"`
}

type Option func(*Subscriber)

func WithRetryDelay(d time.Duration) Option {
	return func(s *Subscriber) { s.retryDelay = d }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Subscriber) { s.log = l }
}

func WithMetrics(m metrics.Metrics) Option {
	return func(s *Subscriber) { s.metrics = m }
}

// Subscriber keeps one streaming connection per local account open,
// reconnecting after a delay whenever it drops.
type Subscriber struct {
	localAccountID int64
	url            string
	token          string
	pub            Publisher

	dialer     *websocket.Dialer
	retryDelay time.Duration
	log        logging.Logger
	metrics    metrics.Metrics
}

func NewSubscriber(localAccountID int64, instance, token string, pub Publisher, opts ...Option) (*Subscriber, error) {
	u, err := StreamURL(instance)
	if err != nil {
		return nil, err
	}
	s := &Subscriber{
		localAccountID: localAccountID,
		url:            u,
		token:          token,
		pub:            pub,
		dialer:         websocket.DefaultDialer,
		retryDelay:     defaultRetryDelay,
		log:            logging.Nop(),
		metrics:        metrics.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("account", localAccountID)
	return s, nil
}

// StreamURL returns the websocket URL of the user stream of instance.
func StreamURL(instance string) (string, error) {
	u, err := client.InstanceURL(instance)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path += "/api/v1/streaming"
	u.RawQuery = url.Values{"stream": {"user"}}.Encode()
	return u.String(), nil
}

// Run consumes the stream until ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	s.log.Info(ctx, "streaming started", "url", s.url)
	for {
		err := s.connect(ctx)
		if ctx.Err() != nil {
			s.log.Info(ctx, "streaming stopped")
			return ctx.Err()
		}
		s.log.Warn(ctx, "streaming connection lost, retrying", "err", err, "delay", s.retryDelay)

		select {
		case <-time.After(s.retryDelay):
			s.metrics.StreamReconnect()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Subscriber) connect(ctx context.Context) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token)

	conn, resp, err := s.dialer.DialContext(ctx, s.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	s.log.Debug(ctx, "streaming connected")

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	done := make(chan struct{})
	var closeOnce sync.Once
	stop := func() { closeOnce.Do(func() { close(done) }) }
	defer stop()

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					stop()
					_ = conn.Close()
					return
				}
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-done:
				return
			}
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))

		if err := s.handle(ctx, raw); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn(ctx, "skipping stream message", "err", err)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, raw []byte) error {
	var msg message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	e, err := Translate(s.localAccountID, msg.Event, msg.Payload)
	if err != nil || e == nil {
		return err
	}
	return s.pub.Publish(ctx, e)
}

// Translate maps a stream event to a cache event. Events the cache does
// not react to yield nil.
func Translate(localAccountID int64, event, payload string) (events.Event, error) {
	switch event {
	case "delete":
		if payload == "" {
			return nil, errors.New("delete without status id")
		}
		return events.StatusDeleted{LocalAccountID: localAccountID, StatusID: payload}, nil
	case "status.update":
		var st models.Status
		if err := json.Unmarshal([]byte(payload), &st); err != nil {
			return nil, fmt.Errorf("decode status.update: %w", err)
		}
		if st.ID == "" {
			return nil, errors.New("status.update without status id")
		}
		return events.StatusEdited{LocalAccountID: localAccountID, Status: st}, nil
	}
	return nil, nil
}
