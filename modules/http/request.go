package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vk/actorgrid/internal/actor"
	"github.com/vk/actorgrid/internal/options"
	"github.com/vk/actorgrid/internal/token"
)

// Request performs one HTTP request per incoming token. The token is the
// URL unless a fixed url is configured, in which case it becomes the
// request body. The response travels on as a container with the slots
// status_code, body and headers.
type Request struct {
	actor.Base
	actor.InputSlot
	actor.OutputQueue

	URL     string
	Method  string
	Headers map[string]string
	Timeout time.Duration
	// FailOnStatus turns responses of 400 and above into errors.
	FailOnStatus bool

	client *http.Client
}

func NewRequest() *Request {
	return &Request{Method: http.MethodGet, Timeout: 30 * time.Second}
}

func (r *Request) Configure(o *options.Options) error {
	var err error
	if r.URL, err = o.String("url", r.URL); err != nil {
		return err
	}
	if r.Method, err = o.String("method", r.Method); err != nil {
		return err
	}
	if r.Timeout, err = o.Duration("timeout", r.Timeout); err != nil {
		return err
	}
	if r.FailOnStatus, err = o.Bool("fail_on_status", r.FailOnStatus); err != nil {
		return err
	}
	raw, err := o.Any("headers")
	if err != nil || raw == nil {
		return err
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("option \"headers\": expected an object, got %T", raw)
	}
	r.Headers = make(map[string]string, len(m))
	for k, v := range m {
		r.Headers[k] = fmt.Sprint(v)
	}
	return nil
}

func (r *Request) Accepts() []token.Kind {
	if r.URL != "" {
		return []token.Kind{token.KindUnknown}
	}
	return []token.Kind{token.KindString}
}

func (r *Request) Generates() []token.Kind { return []token.Kind{token.KindContainer} }

func (r *Request) SetUp(context.Context) error {
	if strings.TrimSpace(r.Method) == "" {
		return errors.New("no method configured")
	}
	r.client = &http.Client{
		Timeout: r.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return nil
}

func (r *Request) Execute(ctx context.Context) error {
	in := r.TakeInput()

	url := r.Expand(r.URL)
	var body io.Reader
	if url == "" {
		url = in.Payload().(string)
	} else if in != nil && in.Payload() != nil {
		body = strings.NewReader(fmt.Sprint(in.Payload()))
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(r.Method), url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, r.Expand(v))
	}

	logger := r.Logger(ctx)
	logger.Debug("Making HTTP request.", "method", req.Method, "url", url)
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	logger.Debug("Received HTTP response.", "status", resp.Status, "bytes", len(data))
	if r.FailOnStatus && resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: %s", req.Method, url, resp.Status)
	}

	r.Push(r.NewToken(token.Container{
		"status_code": resp.StatusCode,
		"body":        string(data),
		"headers":     flatten(resp.Header),
	}))
	return nil
}

// flatten keeps the first value of every header, keyed by its canonical name.
func flatten(h http.Header) token.Container {
	out := make(token.Container, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

func (r *Request) CleanUp() {
	if r.client != nil {
		r.client.CloseIdleConnections()
		r.client = nil
	}
	r.ClearInput()
	r.ClearOutput()
}
