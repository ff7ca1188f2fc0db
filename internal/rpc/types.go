// Package rpc exposes the node over JSON-RPC 2.0 on HTTP, with a
// websocket endpoint for event stream subscriptions.
package rpc

import (
	"context"
	"encoding/json"
)

// JsonRpcRequest is a JSON-RPC 2.0 request.
type JsonRpcRequest struct {
	JsonRpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JsonRpcResponse is a JSON-RPC 2.0 response.
type JsonRpcResponse struct {
	JsonRpc string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RpcError   `json:"error,omitempty"`
	ID      interface{} `json:"id,omitempty"`
}

// RpcError is a JSON-RPC 2.0 error object.
type RpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *RpcError) Error() string {
	return e.Message
}

// Standard JSON-RPC error codes, plus server-defined ones.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603

	// CodeTxFailed carries a transaction engine rejection; Data holds
	// the result code name.
	CodeTxFailed = -32000

	// CodeNotFound reports a missing market, account or entry.
	CodeNotFound = -32001
)

func errInvalidParams(msg string) *RpcError {
	return &RpcError{Code: CodeInvalidParams, Message: msg}
}

func errInternal(err error) *RpcError {
	return &RpcError{Code: CodeInternalError, Message: "internal error", Data: err.Error()}
}

func errNotFound(msg string) *RpcError {
	return &RpcError{Code: CodeNotFound, Message: msg}
}

// HandlerFunc processes one RPC method call.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, *RpcError)

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	methods map[string]HandlerFunc
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]HandlerFunc)}
}

func (r *MethodRegistry) Register(name string, handler HandlerFunc) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (HandlerFunc, bool) {
	handler, exists := r.methods[name]
	return handler, exists
}

func (r *MethodRegistry) List() []string {
	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	return methods
}
