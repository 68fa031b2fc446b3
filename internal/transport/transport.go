// Package transport frames JSON-RPC messages for the stdio dispatch server.
package transport

// file: internal/transport/transport.go

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dkoosis/voicestyle/internal/logging"
)

// MaxMessageSize is the largest accepted message in bytes.
const MaxMessageSize = 1024 * 1024

// Transport sends and receives whole JSON-RPC messages. Implementations must be safe
// for one reader and concurrent writers.
type Transport interface {
	// ReadMessage returns the next message. Structurally invalid messages are returned
	// together with an *Error so callers can still answer them.
	ReadMessage(ctx context.Context) ([]byte, error)
	// WriteMessage sends one message.
	WriteMessage(ctx context.Context, message []byte) error
	// Close shuts the transport down.
	Close() error
}

// NDJSONTransport reads and writes newline-delimited JSON.
type NDJSONTransport struct {
	reader    *bufio.Reader
	readMu    sync.Mutex
	writer    io.Writer
	closer    io.Closer
	logger    logging.Logger
	writeMu   sync.Mutex
	closed    bool
	closeLock sync.RWMutex
}

// NewNDJSONTransport builds a transport over r and w. closer may be nil.
func NewNDJSONTransport(r io.Reader, w io.Writer, closer io.Closer, logger logging.Logger) *NDJSONTransport {
	return &NDJSONTransport{
		reader: bufio.NewReader(r),
		writer: w,
		closer: closer,
		logger: logging.OrNoop(logger).WithField("component", "ndjson_transport"),
	}
}

func (t *NDJSONTransport) isClosed() bool {
	t.closeLock.RLock()
	defer t.closeLock.RUnlock()
	return t.closed
}

type readResult struct {
	data []byte
	err  error
}

// ReadMessage reads the next non-empty line. The read runs in its own goroutine so ctx
// cancellation returns promptly; the goroutine finishes when the underlying reader does.
func (t *NDJSONTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	if t.isClosed() {
		return nil, NewClosedError("read")
	}

	resultCh := make(chan readResult, 1)
	go func() {
		t.readMu.Lock()
		defer t.readMu.Unlock()
		data, err := t.readLine()
		if err == nil {
			t.logger.Debug("Received raw message.", "size", len(data), "contentPreview", preview(data))
			if verr := ValidateMessage(data); verr != nil {
				err = verr
			}
		}
		resultCh <- readResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, NewTimeoutError("read", ctx.Err())
	case res := <-resultCh:
		return res.data, res.err
	}
}

// readLine returns the next non-blank line without its terminator. Oversized lines are
// consumed in full so the stream stays aligned on message boundaries.
func (t *NDJSONTransport) readLine() ([]byte, error) {
	for {
		var buf bytes.Buffer
		oversize := false
		for {
			chunk, isPrefix, err := t.reader.ReadLine()
			if err != nil {
				if err == io.EOF {
					return nil, NewError(ErrTransportClosed, "connection closed by peer", io.EOF).asClosed()
				}
				return nil, NewError(ErrGeneric, "failed to read message line", err)
			}
			if !oversize {
				buf.Write(chunk)
				if buf.Len() > MaxMessageSize {
					oversize = true
				}
			}
			if !isPrefix {
				break
			}
		}
		if oversize {
			return nil, NewMessageSizeError(buf.Len(), MaxMessageSize, buf.Bytes()[:100])
		}
		if line := bytes.TrimSpace(buf.Bytes()); len(line) > 0 {
			return line, nil
		}
	}
}

// WriteMessage writes message followed by a newline.
func (t *NDJSONTransport) WriteMessage(ctx context.Context, message []byte) error {
	if t.isClosed() {
		return NewClosedError("write")
	}
	if len(message) > MaxMessageSize {
		return NewMessageSizeError(len(message), MaxMessageSize, message[:100])
	}
	if bytes.IndexByte(message, '\n') >= 0 {
		return NewError(ErrInvalidMessage, "message contains a raw newline", nil)
	}
	if err := ctx.Err(); err != nil {
		return NewTimeoutError("write", err)
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	buf := make([]byte, len(message)+1)
	copy(buf, message)
	buf[len(message)] = '\n'
	n, err := t.writer.Write(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		t.logger.Error("Failed to write message.", "error", err)
		return NewError(ErrGeneric, "failed to write message", err)
	}
	t.logger.Debug("Wrote message.", "size", len(message))
	return nil
}

// Close marks the transport closed and closes the underlying stream, if any.
func (t *NDJSONTransport) Close() error {
	t.closeLock.Lock()
	defer t.closeLock.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.closer != nil {
		if err := t.closer.Close(); err != nil {
			return NewError(ErrTransportClosed, "failed to close underlying stream", err)
		}
	}
	return nil
}

// ValidateMessage checks that message is a single JSON-RPC 2.0 request, notification or response.
func ValidateMessage(message []byte) error {
	trimmed := bytes.TrimSpace(message)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return NewParseError(message, err)
		}
		return invalid(message, "batch messages are not supported")
	}

	var msg map[string]json.RawMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return NewParseError(message, err)
	}

	var version string
	if err := json.Unmarshal(msg["jsonrpc"], &version); err != nil || version != "2.0" {
		return invalid(message, "'jsonrpc' must be \"2.0\"")
	}

	rawID, hasID := msg["id"]
	if hasID && !validID(rawID) {
		return invalid(message, "invalid request ID type")
	}

	if rawMethod, hasMethod := msg["method"]; hasMethod {
		var method string
		if err := json.Unmarshal(rawMethod, &method); err != nil {
			return invalid(message, "method must be a string")
		}
		switch {
		case method == "":
			return invalid(message, "method cannot be empty")
		case strings.HasPrefix(method, "rpc."):
			return invalid(message, "method names starting with 'rpc.' are reserved")
		}
		if params, ok := msg["params"]; ok && !isObjectOrArray(params) {
			return invalid(message, "params must be an object or array")
		}
		for _, field := range []string{"result", "error"} {
			if _, ok := msg[field]; ok {
				return invalid(message, fmt.Sprintf("request cannot contain '%s' field", field))
			}
		}
		return nil
	}

	if !hasID {
		return invalid(message, "response message must contain 'id' field")
	}
	_, hasResult := msg["result"]
	rawErr, hasError := msg["error"]
	if hasResult == hasError {
		return invalid(message, "response must contain exactly one of 'result' or 'error'")
	}
	if hasError {
		var obj struct {
			Code    *json.Number `json:"code"`
			Message *string      `json:"message"`
		}
		if err := json.Unmarshal(rawErr, &obj); err != nil || obj.Code == nil || obj.Message == nil {
			return invalid(message, "error must be an object with numeric 'code' and string 'message'")
		}
	}
	return nil
}

// ExtractID returns the raw "id" member of message, or nil when absent or unreadable.
func ExtractID(message []byte) json.RawMessage {
	var envelope struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(message, &envelope); err != nil || !validID(envelope.ID) {
		return nil
	}
	return envelope.ID
}

func validID(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case '"', 'n', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return json.Valid(raw)
	}
	return false
}

func isObjectOrArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && (raw[0] == '{' || raw[0] == '[')
}

func invalid(message []byte, reason string) *Error {
	return NewError(ErrInvalidMessage, reason, nil).WithContext("messagePreview", preview(message))
}

func preview(data []byte) string {
	const maxPreviewLen = 100
	if len(data) > maxPreviewLen {
		return string(data[:maxPreviewLen]) + "..."
	}
	return string(data)
}
