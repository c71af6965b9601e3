package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/loykin/launchstub/internal/history"
)

const defaultTimeout = 5 * time.Second

// Options addresses an index. Username enables basic auth.
type Options struct {
	BaseURL  string // scheme://host:port
	Index    string
	Username string
	Password string
	Timeout  time.Duration
}

// Sink indexes each event as one document: POST {base}/{index}/_doc.
type Sink struct {
	client *http.Client
	url    string
	opts   Options
}

func New(opts Options) *Sink {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Sink{
		client: &http.Client{Timeout: opts.Timeout},
		url:    strings.TrimRight(opts.BaseURL, "/") + "/" + opts.Index + "/_doc",
		opts:   opts,
	}
}

// URL is the document endpoint events are posted to.
func (s *Sink) URL() string { return s.url }

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.opts.Username != "" {
		req.SetBasicAuth(s.opts.Username, s.opts.Password)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("opensearch index %s: status %d: %s", s.opts.Index, resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}

func (s *Sink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
