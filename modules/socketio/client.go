package socketio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Connection holds the options shared by all socket.io actors.
type Connection struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

func (c *Connection) configure(o *options.Options) error {
	var err error
	if c.URL, err = o.String("url", ""); err != nil {
		return err
	}
	if c.Namespace, err = o.String("namespace", "/"); err != nil {
		return err
	}
	if c.InsecureSkipVerify, err = o.Bool("insecure_skip_verify", false); err != nil {
		return err
	}
	c.ConnectTimeout, err = o.Duration("connect_timeout", 15*time.Second)
	return err
}

func (c *Connection) validate() error {
	if c.URL == "" {
		return errors.New("no url configured")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url %q needs a scheme and a host", c.URL)
	}
	return nil
}

// dial connects to the server and waits for the connection to be
// established.
func (c *Connection) dial(ctx context.Context, logger *slog.Logger) (*socket.Socket, error) {
	logger = logger.With("url", c.URL, "namespace", c.Namespace)
	logger.Debug("Connecting to socket.io server.")

	parsedURL, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if c.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connected := make(chan error, 1)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(c.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		select {
		case connected <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect error")
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

	timer := time.NewTimer(c.ConnectTimeout)
	defer timer.Stop()
	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		logger.Info("Connected to socket.io server.", "sid", io.Id())
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", c.ConnectTimeout)
	}
}

// toWire turns a payload into something the socket.io encoder handles.
func toWire(v any) any {
	switch p := v.(type) {
	case token.Container:
		return toWire(map[string]any(p))
	case map[string]any:
		out := make(map[string]any, len(p))
		for k, e := range p {
			out[k] = toWire(e)
		}
		return out
	case []any:
		out := make([]any, len(p))
		for i, e := range p {
			out[i] = toWire(e)
		}
		return out
	default:
		return v
	}
}

// fromWire turns decoded event data into a payload. Objects become
// containers and whole numbers become ints.
func fromWire(v any) any {
	switch p := v.(type) {
	case map[string]any:
		out := make(token.Container, len(p))
		for k, e := range p {
			out[k] = fromWire(e)
		}
		return out
	case []any:
		out := make([]any, len(p))
		for i, e := range p {
			out[i] = fromWire(e)
		}
		return out
	case float64:
		if p == float64(int(p)) {
			return int(p)
		}
		return p
	default:
		return v
	}
}
