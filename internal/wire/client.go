package wire

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

var json = jsoniter.Config{
	EscapeHTML:  true,
	SortMapKeys: true,
	UseNumber:   true,
}.Froze()

// CredentialProvider supplies the bearer token attached to every request.
// An empty token means the request goes out unauthenticated.
type CredentialProvider interface {
	Token() string
}

type Client struct {
	baseURL     string
	credentials CredentialProvider
	httpClient  *http.Client
}

// RequestOptions carries per-call extras. Query keys use the console's
// camelCase convention and are rewritten like body keys; nil values are skipped.
type RequestOptions struct {
	Query  map[string]interface{}
	Header http.Header
}

func NewClient(baseURL string, credentials CredentialProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send performs one call against the backend and returns the response body as
// a camelCase tree. A *Multipart body is sent as-is; any other body is
// converted to the wire convention and serialised as JSON.
func (c *Client) Send(ctx context.Context, method, path string, body interface{}, opts *RequestOptions) (interface{}, error) {
	reader, contentType, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	endpoint, err := c.endpoint(path, opts)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.credentials != nil {
		if token := c.credentials.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if opts != nil {
		for k, values := range opts.Header {
			for _, v := range values {
				req.Header.Add(k, v)
			}
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		zap.L().Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := newStatusError(resp.StatusCode, serverMessage(data))
		zap.L().Warn("backend rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", se.Message),
		)
		return nil, se
	}

	tree, err := decodeBody(data)
	if err != nil {
		zap.L().Error("backend returned malformed body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	zap.L().Debug("backend request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)
	return tree, nil
}

// Do is Send followed by Decode into out. A nil out discards the body.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, opts *RequestOptions, out interface{}) error {
	tree, err := c.Send(ctx, method, path, body, opts)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return Decode(tree, out)
}

func (c *Client) endpoint(path string, opts *RequestOptions) (string, error) {
	raw := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if opts == nil || len(opts.Query) == 0 {
		return raw, nil
	}

	keys := make([]string, 0, len(opts.Query))
	for k := range opts.Query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		v := opts.Query[k]
		if v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode query parameter %s: %w", k, err)
		}
		values.Set(SnakeKey(k), s)
	}
	if len(values) == 0 {
		return raw, nil
	}
	return raw + "?" + values.Encode(), nil
}

func encodeBody(body interface{}) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		buf, contentType, err := b.encode()
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode multipart body: %w", err)
		}
		return buf, contentType, nil
	}

	tree, err := ToTree(body)
	if err != nil {
		return nil, "", err
	}
	data, err := json.Marshal(ToWireFormat(tree))
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// ToTree converts a typed value into the generic mapping/array/scalar tree
// using its json tags.
func ToTree(v interface{}) (interface{}, error) {
	switch v.(type) {
	case map[string]interface{}, []interface{}:
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	var tree interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to build request tree: %w", err)
	}
	return tree, nil
}

func decodeBody(data []byte) (interface{}, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]interface{}{}, nil
	}
	var tree interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseFormat, err)
	}
	return FromWireFormat(tree), nil
}

func serverMessage(data []byte) string {
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail"} {
		if s, ok := body[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
