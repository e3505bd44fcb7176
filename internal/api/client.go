package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"gopkg.in/resty.v1"

	"workbook-loader/internal/resource"
	"workbook-loader/internal/workbook"
)

const (
	operationsPath     = "operations"
	conversionPath     = "/objectstore-api/conversion/workbook"
	idempotencyHeader  = "Idempotency-Key"
	jsonAPIContentType = "application/vnd.api+json"
	pageLimit          = "1000"
)

// Client is a Backend over HTTP.
type Client struct {
	rc     *resty.Client
	logger *slog.Logger
}

var _ Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.rc.SetAuthToken(token)
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.rc.SetTimeout(d)
		}
	}
}

// WithLogger sets the logger. Requests are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient returns a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		rc:     resty.New().SetHostURL(strings.TrimRight(baseURL, "/")),
		logger: slog.Default(),
	}

	c.rc.SetHeader("Accept", jsonAPIContentType)

	for _, opt := range opts {
		opt(c)
	}

	c.rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.Debug("api request",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"elapsed", resp.Time())

		return nil
	})

	return c
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.rc.R().SetContext(ctx)
}

func join(paths ...string) string {
	return "/" + strings.TrimLeft(path.Join(paths...), "/")
}

// Get fetches the records at p whose attributes equal every filter entry.
func (c *Client) Get(ctx context.Context, p string, filter map[string]string) ([]resource.Draft, error) {
	req := c.r(ctx)
	for k, v := range filter {
		req.SetQueryParam("filter["+k+"]", v)
	}

	url := join(p)

	resp, err := req.Get(url)
	if err := getAPIError(url, resp, err); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("api '%s': failed to decode response: %w", url, err)
	}

	return decodeData(doc.Data)
}

// Save submits every operation in one request to the operations endpoint of
// opts.APIBaseURL. Resources with an id are patched, the others created.
func (c *Client) Save(ctx context.Context, ops []SaveOperation, opts SaveOptions) ([]resource.Draft, error) {
	body := make([]operation, 0, len(ops))

	for i, op := range ops {
		obj, err := encodeResource(op.Resource, op.Type)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}

		o := operation{Op: http.MethodPost, Path: obj.Type, Value: obj}
		if obj.ID != "" {
			o.Op = http.MethodPatch
			o.Path = obj.Type + "/" + obj.ID
		}

		body = append(body, o)
	}

	req := c.r(ctx).
		SetHeader("Content-Type", "application/json-patch+json").
		SetBody(body)

	if opts.IdempotencyKey != "" {
		req.SetHeader(idempotencyHeader, opts.IdempotencyKey)
	}

	url := join(opts.APIBaseURL, operationsPath)

	resp, err := req.Post(url)
	if err := getAPIError(url, resp, err); err != nil {
		return nil, err
	}

	var results []operationResult
	if err := json.Unmarshal(resp.Body(), &results); err != nil {
		return nil, fmt.Errorf("api '%s': failed to decode response: %w", url, err)
	}

	saved := make([]resource.Draft, 0, len(results))

	for i, res := range results {
		if res.Status > 299 {
			return nil, fmt.Errorf("operation %d: %w", i, &Error{
				StatusCode: res.Status,
				Path:       body[min(i, len(body)-1)].Path,
				Details:    details(res.Errors),
			})
		}

		if res.Data == nil {
			return nil, fmt.Errorf("operation %d: response has no data", i)
		}

		d, err := res.Data.draft()
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}

		saved = append(saved, d)
	}

	if len(saved) != len(ops) {
		return nil, fmt.Errorf("api '%s': %d operations sent, %d results received", url, len(ops), len(saved))
	}

	return saved, nil
}

// Vocabulary returns the element keys of a vocabulary endpoint.
func (c *Client) Vocabulary(ctx context.Context, endpoint string) ([]string, error) {
	url := join(endpoint)

	resp, err := c.r(ctx).Get(url)
	if err := getAPIError(url, resp, err); err != nil {
		return nil, err
	}

	var doc struct {
		Data struct {
			Attributes struct {
				VocabularyElements []struct {
					Key  string `json:"key"`
					Name string `json:"name"`
				} `json:"vocabularyElements"`
			} `json:"attributes"`
		} `json:"data"`
	}

	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("api '%s': failed to decode vocabulary: %w", url, err)
	}

	keys := make([]string, 0, len(doc.Data.Attributes.VocabularyElements))
	for _, el := range doc.Data.Attributes.VocabularyElements {
		keys = append(keys, el.Key)
	}

	return keys, nil
}

// ManagedAttributes lists the managed attributes of an endpoint.
func (c *Client) ManagedAttributes(ctx context.Context, endpoint string) ([]ManagedAttribute, error) {
	url := join(endpoint)

	resp, err := c.r(ctx).SetQueryParam("page[limit]", pageLimit).Get(url)
	if err := getAPIError(url, resp, err); err != nil {
		return nil, err
	}

	var doc struct {
		Data []struct {
			ID         string           `json:"id"`
			Type       string           `json:"type"`
			Attributes ManagedAttribute `json:"attributes"`
		} `json:"data"`
	}

	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("api '%s': failed to decode managed attributes: %w", url, err)
	}

	out := make([]ManagedAttribute, 0, len(doc.Data))

	for _, d := range doc.Data {
		ma := d.Attributes
		ma.ID, ma.Type = d.ID, d.Type
		out = append(out, ma)
	}

	return out, nil
}

// ConvertWorkbook uploads a spreadsheet to the backend conversion endpoint
// and returns the parsed workbook.
func (c *Client) ConvertWorkbook(ctx context.Context, fileName string, r io.Reader) (workbook.Workbook, error) {
	resp, err := c.r(ctx).SetFileReader("file", fileName, r).Post(conversionPath)
	if err := getAPIError(conversionPath, resp, err); err != nil {
		return nil, err
	}

	return workbook.Decode(bytes.NewReader(resp.Body()))
}

func getAPIError(p string, resp *resty.Response, err error) error {
	switch {
	case err != nil:
		return fmt.Errorf("api '%s': %w", p, err)
	case resp.StatusCode() == http.StatusUnauthorized, resp.StatusCode() == http.StatusForbidden:
		return fmt.Errorf("api '%s': %w", p, ErrUnauthorized)
	case resp.StatusCode() == http.StatusNotFound:
		return fmt.Errorf("api '%s': %w", p, ErrNotFound)
	case resp.StatusCode() > 299:
		return toErrorFromResponse(p, resp)
	default:
		return nil
	}
}

func toErrorFromResponse(p string, resp *resty.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode(), Path: p}

	var doc document
	if err := json.Unmarshal(resp.Body(), &doc); err == nil {
		apiErr.Details = details(doc.Errors)
	}

	return apiErr
}
