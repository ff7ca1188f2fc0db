package rpc

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/bondledger/bondmarketd/internal/events"
)

// Server serves JSON-RPC over HTTP and event streams over websocket.
type Server struct {
	registry *MethodRegistry
	hub      *events.Hub
	mux      *http.ServeMux
}

// NewServer wires the method registry and the websocket endpoint.
func NewServer(services *Services, hub *events.Hub) *Server {
	s := &Server{
		registry: NewMethodRegistry(),
		hub:      hub,
		mux:      http.NewServeMux(),
	}
	registerMethods(s.registry, services)

	s.mux.HandleFunc("/", s.handleRPC)
	s.mux.HandleFunc("/ws", s.handleWebsocket)
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JsonRpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, JsonRpcResponse{
			JsonRpc: "2.0",
			Error:   &RpcError{Code: CodeParseError, Message: "parse error"},
		})
		return
	}

	handler, ok := s.registry.Get(req.Method)
	if !ok {
		writeResponse(w, JsonRpcResponse{
			JsonRpc: "2.0",
			ID:      req.ID,
			Error:   &RpcError{Code: CodeMethodNotFound, Message: "method not found: " + req.Method},
		})
		return
	}

	result, rpcErr := handler(r.Context(), req.Params)
	writeResponse(w, JsonRpcResponse{
		JsonRpc: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   rpcErr,
	})
}

func writeResponse(w http.ResponseWriter, resp JsonRpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("rpc: write response: %v", err)
	}
}
