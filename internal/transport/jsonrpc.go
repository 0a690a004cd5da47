package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"marginbook/internal/domain/client"
	"marginbook/internal/snapshot"
)

// JSON-RPC 2.0 error codes.
const (
	ErrParseCode      = -32700
	ErrInvalidReq     = -32600
	ErrMethodNotFound = -32601
	ErrInvalidParams  = -32602
	ErrInternal       = -32603
)

// ErrMalformedPayload marks a request body that is not valid JSON.
var ErrMalformedPayload = errors.New("parse error")

// ErrInvalidEnvelope marks well-formed JSON that is not a usable
// JSON-RPC 2.0 request. Batch requests fall in here: the boundary
// serves one local UI and has no use for them.
var ErrInvalidEnvelope = errors.New("invalid request")

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error represents a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ParseRequest parses and validates a JSON-RPC request payload.
// Unparseable JSON wraps ErrMalformedPayload; parseable-but-wrong
// envelopes (including batch arrays) wrap ErrInvalidEnvelope.
func ParseRequest(body io.Reader) (Request, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return Request{}, fmt.Errorf("%w: batch requests are not supported", ErrInvalidEnvelope)
	}

	var req Request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return Request{}, ErrInvalidEnvelope
	}
	return req, nil
}

// CodeFor maps a failure onto its JSON-RPC error code. Validation
// failures and unreadable payloads are the caller's fault; everything
// else is internal.
func CodeFor(err error) int {
	switch {
	case errors.Is(err, client.ErrNameRequired), errors.Is(err, ErrParams):
		return ErrInvalidParams
	case errors.Is(err, snapshot.ErrParse), errors.Is(err, ErrMalformedPayload):
		return ErrParseCode
	case errors.Is(err, ErrMethodUnknown):
		return ErrMethodNotFound
	case errors.Is(err, ErrInvalidEnvelope):
		return ErrInvalidReq
	default:
		return ErrInternal
	}
}

// WriteResult writes a JSON-RPC success response.
func WriteResult(w http.ResponseWriter, id any, result any) {
	writeJSON(w, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	})
}

// WriteError writes a JSON-RPC error response.
func WriteError(w http.ResponseWriter, id any, code int, message string, data any) {
	writeJSON(w, Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	})
}

func writeJSON(w http.ResponseWriter, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}
