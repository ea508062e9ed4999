// Package jsonrpc builds and parses JSON-RPC 2.0 messages. It covers the
// envelope only; MCP method semantics live in the MCP server.
package jsonrpc

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Version specifies the JSON-RPC protocol version
const Version = "2.0"

// Request represents a JSON-RPC 2.0 request or notification.
// ID is omitted for notifications.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
// Either Result or Error is set, never both.
type Response struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      any                 `json:"id"`
	Result  jsoniter.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject        `json:"error,omitempty"`
}

// ErrorObject represents a JSON-RPC 2.0 error object.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *ErrorObject) Error() string {
	return fmt.Sprintf("JSON-RPC error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC 2.0 error codes
const (
	ErrCodeParseError     = -32700 // Invalid JSON was received
	ErrCodeInvalidRequest = -32600 // The JSON sent is not a valid Request object
	ErrCodeMethodNotFound = -32601 // The method does not exist
	ErrCodeInvalidParams  = -32602 // Invalid method parameter(s)
	ErrCodeInternalError  = -32603 // Internal JSON-RPC error
)

// ErrInvalidResponse is returned by ParseResponse for a malformed envelope.
var ErrInvalidResponse = errors.New("invalid JSON-RPC response")

// ConstructRequest creates a JSON-RPC request message.
func ConstructRequest(id any, method string, params any) ([]byte, error) {
	return json.Marshal(Request{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
		Params:  params,
	})
}

// ConstructNotification creates a JSON-RPC notification (no response expected).
func ConstructNotification(method string, params any) ([]byte, error) {
	return json.Marshal(Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
	})
}

// ConstructErrorResponse creates a JSON-RPC error response. id is nil when
// the request id could not be read.
func ConstructErrorResponse(id any, code int, message string, data any) ([]byte, error) {
	return json.Marshal(Response{
		JSONRPC: Version,
		ID:      id,
		Error: &ErrorObject{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

// ParseResponse unmarshals a JSON-RPC response and checks that exactly one
// of result and error is present.
func ParseResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if resp.JSONRPC != Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidResponse, resp.JSONRPC)
	}
	if (len(resp.Result) == 0) == (resp.Error == nil) {
		return nil, fmt.Errorf("%w: response must have either result or error", ErrInvalidResponse)
	}
	return &resp, nil
}

// Err returns the response's error object as an error, or nil.
func (r *Response) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}
