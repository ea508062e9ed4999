// Package httpclient is a small client for the nanobanana HTTP endpoints:
// plain JSON GETs and JSON-RPC calls on the MCP route.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/tansive/nanobanana/internal/common/jsonrpc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTimeout bounds a single request unless the caller's context is shorter.
const DefaultTimeout = 30 * time.Second

// ServerError represents an error response from the server with a result code and error message.
type ServerError struct {
	Result int    `json:"result"` // result code from server
	Error  string `json:"error"`  // error message from server
}

// HTTPError represents an error response from the server with HTTP status code and message.
type HTTPError struct {
	StatusCode int    // HTTP status code of the error
	Message    string // error message or response body
}

// Error implements the error interface for HTTPError.
func (e *HTTPError) Error() string {
	return e.Message
}

// HTTPClient makes requests against one server.
type HTTPClient struct {
	serverURL  string
	httpClient *http.Client
	nextID     atomic.Int64
}

// NewClient creates a client for serverURL, e.g. http://127.0.0.1:8628.
func NewClient(serverURL string) (*HTTPClient, error) {
	u, err := url.Parse(serverURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL: %q", serverURL)
	}
	return &HTTPClient{
		serverURL:  serverURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// RequestOptions contains options for making HTTP requests.
type RequestOptions struct {
	Method      string            // HTTP method (GET, POST)
	Path        string            // endpoint path
	QueryParams map[string]string // optional query parameters
	Body        []byte            // optional request body
}

// DoRequest makes an HTTP request and returns the response body. Responses
// with status 400 or above are returned as *HTTPError.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) ([]byte, error) {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %v", err)
	}
	u.Path = path.Join(u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, opts.Method, u.String(), bytes.NewReader(opts.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode >= 400 {
		var serverErr ServerError
		if err := json.Unmarshal(body, &serverErr); err == nil && serverErr.Error != "" {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: serverErr.Error}
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: "server doesn't implement this endpoint"}
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return body, nil
}

// GetJSON issues a GET on p and decodes the response into out.
func (c *HTTPClient) GetJSON(ctx context.Context, p string, out any) error {
	body, err := c.DoRequest(ctx, RequestOptions{Method: http.MethodGet, Path: p})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unable to decode response from %s: %v", p, err)
	}
	return nil
}

// Call posts a JSON-RPC request to p and returns the result. A JSON-RPC
// error in the response is returned as *jsonrpc.ErrorObject.
func (c *HTTPClient) Call(ctx context.Context, p string, method string, params any) (jsoniter.RawMessage, error) {
	msg, err := jsonrpc.ConstructRequest(c.nextID.Add(1), method, params)
	if err != nil {
		return nil, err
	}
	body, err := c.DoRequest(ctx, RequestOptions{Method: http.MethodPost, Path: p, Body: msg})
	if err != nil {
		return nil, err
	}
	resp, err := jsonrpc.ParseResponse(body)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return resp.Result, nil
}
