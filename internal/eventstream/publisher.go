// Package eventstream publishes graph events to a socket.io server so that
// a run can be followed live.
package eventstream

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/graph"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// emitter is the part of a socket.io client the publisher needs.
type emitter interface {
	Emit(event string, payload map[string]any)
	Close()
}

// Publisher is a graph.Observer that forwards every event.
type Publisher struct {
	mu      sync.Mutex
	emitter emitter
	event   string
	wfName  string
	logger  *slog.Logger
	closed  bool
}

var _ graph.Observer = (*Publisher)(nil)

// Dial connects to the configured server and waits for the connection to be
// established or for cfg.Timeout to pass.
func Dial(ctx context.Context, cfg *config.Events) (*Publisher, error) {
	logger := ctxlog.FromContext(ctx).With("component", "eventstream", "url", cfg.URL, "namespace", cfg.Namespace)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	connected := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Event stream connected", "sid", io.Id())
		select {
		case connected <- nil:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connection refused")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})
	io.Connect()

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	select {
	case <-dialCtx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("timed out while waiting for event stream connection to %s", cfg.URL)
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("event stream connection failed: %w", err)
		}
	}

	return newPublisher(&socketEmitter{io: io}, cfg.Event, logger), nil
}

func newPublisher(e emitter, event string, logger *slog.Logger) *Publisher {
	return &Publisher{emitter: e, event: event, logger: logger}
}

// SetWorkflow tags subsequent events with the workflow name.
func (p *Publisher) SetWorkflow(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wfName = name
}

// OnEvent implements graph.Observer.
func (p *Publisher) OnEvent(e graph.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	payload := map[string]any{
		"kind":   string(e.Kind),
		"node":   e.Node.String(),
		"label":  e.Node.Label(),
		"status": e.Status.String(),
	}
	if !e.Parent.IsZero() {
		payload["parent"] = e.Parent.String()
	}
	if p.wfName != "" {
		payload["workflow"] = p.wfName
	}
	p.emitter.Emit(p.event, payload)
}

// Close disconnects from the server. Events received afterwards are dropped.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.logger.Debug("Disconnecting event stream")
	p.emitter.Close()
}

type socketEmitter struct {
	io *socket.Socket
}

func (s *socketEmitter) Emit(event string, payload map[string]any) {
	s.io.Emit(event, payload)
}

func (s *socketEmitter) Close() {
	s.io.Disconnect()
}
