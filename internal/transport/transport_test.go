package transport

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNDJSONTransport_ReadMessage_SplitsLinesAndSkipsBlanks(t *testing.T) {
	input := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n\n" +
		`{"jsonrpc":"2.0","method":"notifications/initialized"}` // No trailing newline.
	tr := NewNDJSONTransport(strings.NewReader(input), io.Discard, nil, nil)
	ctx := context.Background()

	msg, err := tr.ReadMessage(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"ping"}`, string(msg))

	msg, err = tr.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(msg), "notifications/initialized")

	_, err = tr.ReadMessage(ctx)
	require.Error(t, err)
	assert.True(t, IsClosedError(err), "EOF should read as a closed transport, got %v", err)
}

func TestNDJSONTransport_ReadMessage_ParseErrorKeepsStreamUsable(t *testing.T) {
	input := "{not json\n" + `{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n"
	tr := NewNDJSONTransport(strings.NewReader(input), io.Discard, nil, nil)

	_, err := tr.ReadMessage(context.Background())
	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, ErrJSONParseFailed, te.Code)

	msg, err := tr.ReadMessage(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"id":2`)
}

func TestNDJSONTransport_ReadMessage_OversizeLineIsSkipped(t *testing.T) {
	big := `{"jsonrpc":"2.0","id":1,"method":"ping","params":{"pad":"` + strings.Repeat("x", MaxMessageSize) + `"}}`
	input := big + "\n" + `{"jsonrpc":"2.0","id":3,"method":"ping"}` + "\n"
	tr := NewNDJSONTransport(strings.NewReader(input), io.Discard, nil, nil)

	_, err := tr.ReadMessage(context.Background())
	var te *Error
	require.True(t, errors.As(err, &te))
	assert.Equal(t, ErrMessageTooLarge, te.Code)

	msg, err := tr.ReadMessage(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"id":3`)
}

func TestNDJSONTransport_ReadMessage_ContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	tr := NewNDJSONTransport(pr, io.Discard, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := tr.ReadMessage(ctx)
	assert.True(t, IsTimeoutError(err), "got %v", err)
}

func TestNDJSONTransport_WriteMessage_AppendsNewline(t *testing.T) {
	var out bytes.Buffer
	tr := NewNDJSONTransport(strings.NewReader(""), &out, nil, nil)

	require.NoError(t, tr.WriteMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"result":{}}`)))
	assert.Equal(t, "{\"jsonrpc\":\"2.0\",\"id\":1,\"result\":{}}\n", out.String())

	assert.Error(t, tr.WriteMessage(context.Background(), []byte("{\n}")))

	require.NoError(t, tr.Close())
	err := tr.WriteMessage(context.Background(), []byte(`{}`))
	assert.True(t, IsClosedError(err))
	_, err = tr.ReadMessage(context.Background())
	assert.True(t, IsClosedError(err))
}

func TestValidateMessage(t *testing.T) {
	testCases := []struct {
		name    string
		message string
		code    ErrorCode
	}{
		{name: "Request", message: `{"jsonrpc":"2.0","id":"a","method":"prompts/get","params":{"name":"x"}}`},
		{name: "Notification", message: `{"jsonrpc":"2.0","method":"notifications/initialized"}`},
		{name: "Response", message: `{"jsonrpc":"2.0","id":1,"result":{}}`},
		{name: "ErrorResponseNullID", message: `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`},
		{name: "NotJSON", message: `{`, code: ErrJSONParseFailed},
		{name: "MissingVersion", message: `{"id":1,"method":"ping"}`, code: ErrInvalidMessage},
		{name: "WrongVersion", message: `{"jsonrpc":"1.0","id":1,"method":"ping"}`, code: ErrInvalidMessage},
		{name: "MethodNotString", message: `{"jsonrpc":"2.0","id":1,"method":7}`, code: ErrInvalidMessage},
		{name: "EmptyMethod", message: `{"jsonrpc":"2.0","id":1,"method":""}`, code: ErrInvalidMessage},
		{name: "ReservedMethod", message: `{"jsonrpc":"2.0","id":1,"method":"rpc.x"}`, code: ErrInvalidMessage},
		{name: "ScalarParams", message: `{"jsonrpc":"2.0","id":1,"method":"ping","params":3}`, code: ErrInvalidMessage},
		{name: "ObjectID", message: `{"jsonrpc":"2.0","id":{},"method":"ping"}`, code: ErrInvalidMessage},
		{name: "ResultAndError", message: `{"jsonrpc":"2.0","id":1,"result":{},"error":{"code":1,"message":"x"}}`, code: ErrInvalidMessage},
		{name: "Batch", message: `[{"jsonrpc":"2.0","id":1,"method":"ping"}]`, code: ErrInvalidMessage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMessage([]byte(tc.message))
			if tc.code == 0 {
				assert.NoError(t, err)
				return
			}
			var te *Error
			require.True(t, errors.As(err, &te), "got %v", err)
			assert.Equal(t, tc.code, te.Code)
		})
	}
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, `7`, string(ExtractID([]byte(`{"jsonrpc":"2.0","id":7,"method":"x"}`))))
	assert.Equal(t, `"abc"`, string(ExtractID([]byte(`{"id":"abc"}`))))
	assert.Nil(t, ExtractID([]byte(`{"method":"x"}`)))
	assert.Nil(t, ExtractID([]byte(`{broken`)))
}

func TestToProtocolError(t *testing.T) {
	pe := ToProtocolError(NewParseError([]byte("{"), errors.New("bad")))
	require.NotNil(t, pe)
	assert.Equal(t, mcperrors.ErrParseError, pe.Code)

	pe = ToProtocolError(NewMessageSizeError(10, 5, nil))
	require.NotNil(t, pe)
	assert.Equal(t, mcperrors.ErrInvalidRequest, pe.Code)

	assert.Nil(t, ToProtocolError(NewClosedError("read")))
	assert.Nil(t, ToProtocolError(errors.New("other")))
}

func TestPipe_RoundTripAndClose(t *testing.T) {
	client, server := NewPipe()
	ctx := context.Background()

	require.NoError(t, client.WriteMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))
	msg, err := server.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(msg), "ping")

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	_, err = server.ReadMessage(ctx)
	assert.True(t, IsClosedError(err))
	assert.True(t, IsClosedError(client.WriteMessage(ctx, []byte(`{}`))))
}
