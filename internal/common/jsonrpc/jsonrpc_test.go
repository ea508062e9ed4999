package jsonrpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestConstructRequest(t *testing.T) {
	b, err := ConstructRequest(7, "tools/list", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":7,"method":"tools/list"}`, string(b))

	b, err = ConstructRequest("abc", "tools/call", map[string]any{"name": "generate_image"})
	require.NoError(t, err)
	assert.Equal(t, "abc", gjson.GetBytes(b, "id").String())
	assert.Equal(t, "generate_image", gjson.GetBytes(b, "params.name").String())
}

func TestConstructNotification(t *testing.T) {
	b, err := ConstructNotification("notifications/initialized", nil)
	require.NoError(t, err)
	assert.False(t, gjson.GetBytes(b, "id").Exists())
}

func TestConstructErrorResponse(t *testing.T) {
	b, err := ConstructErrorResponse(nil, ErrCodeParseError, "parse error", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"parse error"}}`, string(b))
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
		rpcErr  bool
	}{
		{"result", `{"jsonrpc":"2.0","id":1,"result":{}}`, false, false},
		{"error", `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"method not found"}}`, false, true},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"result":{}}`, true, false},
		{"neither", `{"jsonrpc":"2.0","id":1}`, true, false},
		{"both", `{"jsonrpc":"2.0","id":1,"result":{},"error":{"code":1,"message":"x"}}`, true, false},
		{"not json", `{oops`, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse([]byte(tt.in))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidResponse)
				return
			}
			require.NoError(t, err)
			if tt.rpcErr {
				require.Error(t, resp.Err())
				assert.Contains(t, resp.Err().Error(), "method not found")
			} else {
				assert.NoError(t, resp.Err())
			}
		})
	}
}
