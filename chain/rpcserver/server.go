// Package rpcserver is a thin reference JSON-RPC-over-HTTP listener that
// fakes the host chain node's surface for integration tests: the core
// normally runs against a real host, but this lets tests drive
// chain/rpc.Client against something that actually speaks the wire
// protocol in-process.
package rpcserver

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler is a registered JSON-RPC method implementation.
type Handler func(params json.RawMessage) (any, error)

// Server dispatches JSON-RPC 2.0 requests to registered method handlers.
type Server struct {
	methods map[string]Handler
	router  *mux.Router
}

func New() *Server {
	s := &Server{
		methods: make(map[string]Handler),
		router:  mux.NewRouter(),
	}
	s.router.HandleFunc("/", s.handleHTTP).Methods(http.MethodPost)
	return s
}

// Register installs a method handler, replacing any prior registration
// for the same name.
func (s *Server) Register(method string, h Handler) {
	s.methods[method] = h
}

func (s *Server) Handler() http.Handler { return s.router }

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      int             `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  any         `json:"result,omitempty"`
	Error   *rpcError   `json:"error,omitempty"`
	ID      int         `json:"id"`
}

func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	// A batch request is a JSON array; try that first.
	var batch []rpcRequest
	if err := json.Unmarshal(body, &batch); err == nil && len(batch) > 0 {
		responses := make([]rpcResponse, len(batch))
		for i, req := range batch {
			responses[i] = s.dispatch(req)
		}
		writeJSON(w, responses)
		return
	}

	var req rpcRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, rpcResponse{JSONRPC: "2.0", Error: &rpcError{Code: -32700, Message: "parse error"}})
		return
	}
	writeJSON(w, s.dispatch(req))
}

func (s *Server) dispatch(req rpcRequest) rpcResponse {
	handler, ok := s.methods[req.Method]
	if !ok {
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32601, Message: "method not found: " + req.Method}}
	}

	result, err := handler(req.Params)
	if err != nil {
		log.Printf("rpcserver: method %s failed: %v", req.Method, err)
		return rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: &rpcError{Code: -32603, Message: err.Error()}}
	}
	return rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("rpcserver: failed to encode response: %v", err)
	}
}
