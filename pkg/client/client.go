// Package client calls a running site generator over HTTP.
package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/pridano/internal/core"
	"github.com/tensorplex-labs/pridano/internal/sitegen"
)

const DefaultTimeout = 200 * time.Second

type Config struct {
	BaseURL string
	// Timeout bounds each call; generation with a model can take minutes.
	Timeout         time.Duration
	ZstdCompression bool
}

type Client struct {
	config  Config
	resty   *resty.Client
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// GenerateResponse mirrors the body of POST /generate.
type GenerateResponse struct {
	SavedAt          string         `json:"saved_at"`
	Best             core.Variant   `json:"best"`
	Variants         []core.Variant `json:"variants"`
	NormalizedScores []float64      `json:"normalized_scores"`
	Log              []string       `json:"log"`
}

// APIError is a non-2xx reply.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.StatusCode, e.Message)
}

func New(cfg Config) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{
		config: cfg,
		resty: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetJSONMarshaler(sonic.Marshal).
			SetJSONUnmarshaler(sonic.Unmarshal),
	}

	if cfg.ZstdCompression {
		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			encoder.Close()
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		c.encoder = encoder
		c.decoder = decoder
		c.resty.SetHeader("Accept-Encoding", "zstd")
	}
	return c, nil
}

func (c *Client) Close() {
	if c.encoder != nil {
		_ = c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
}

// Generate asks for n variants of brief scored by scorer; an empty scorer
// uses the server default.
func (c *Client) Generate(ctx context.Context, brief core.Brief, n int, scorer string) (*GenerateResponse, error) {
	query := map[string]string{"n": strconv.Itoa(n)}
	if scorer != "" {
		query["scorer"] = scorer
	}
	var out GenerateResponse
	if err := c.post(ctx, "/generate", query, brief, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Edit(ctx context.Context, req sitegen.EditRequest) (*sitegen.EditResult, error) {
	var out sitegen.EditResult
	if err := c.post(ctx, "/ai/edit", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Runs(ctx context.Context, limit int) ([]core.Run, error) {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		Get("/api/runs")
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	var runs []core.Run
	if err := c.decode(resp, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func (c *Client) Health(ctx context.Context) error {
	resp, err := c.resty.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	var out struct {
		Status string `json:"status"`
	}
	if err := c.decode(resp, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", out.Status)
	}
	return nil
}

// GenerateMany runs one Generate per brief concurrently. Results and errors
// are index aligned with briefs.
func (c *Client) GenerateMany(ctx context.Context, briefs []core.Brief, n int, scorer string) ([]*GenerateResponse, []error) {
	results := make([]*GenerateResponse, len(briefs))
	errs := make([]error, len(briefs))

	var wg sync.WaitGroup
	wg.Add(len(briefs))
	for i, b := range briefs {
		go func(index int, brief core.Brief) {
			defer wg.Done()
			res, err := c.Generate(ctx, brief, n, scorer)
			if err != nil {
				errs[index] = fmt.Errorf("error in request %d: %w", index, err)
				return
			}
			results[index] = res
		}(i, b)
	}
	wg.Wait()
	return results, errs
}

func (c *Client) post(ctx context.Context, path string, query map[string]string, body, out any) error {
	req := c.resty.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeader("Content-Type", "application/json")

	if c.encoder != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		req.SetHeader("Content-Encoding", "zstd").SetBody(c.encoder.EncodeAll(data, nil))
	} else {
		req.SetBody(body)
	}

	log.Trace().Str("path", path).Any("query", query).Msg("sending request")
	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	return c.decode(resp, out)
}

// decode unpacks a JSON reply, undoing zstd when the server used it.
func (c *Client) decode(resp *resty.Response, out any) error {
	body := resp.Body()
	if strings.EqualFold(resp.Header().Get("Content-Encoding"), "zstd") {
		if c.decoder == nil {
			return errors.New("zstd response without a decoder")
		}
		plain, err := c.decoder.DecodeAll(body, nil)
		if err != nil {
			return fmt.Errorf("failed to decompress response: %w", err)
		}
		body = plain
	}

	if resp.IsError() {
		var e struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		msg := string(body)
		if err := sonic.Unmarshal(body, &e); err == nil {
			if e.Error != "" {
				msg = e.Error
			} else if e.Detail != "" {
				msg = e.Detail
			}
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
