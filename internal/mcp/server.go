// Package mcp provides an MCP (Model Context Protocol) server for packtrace.
// MCP lets LLM agents search the packaging hierarchy through a standardized
// protocol. Tool calls run the search engine in-process.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/packtrace/packtrace/internal/search"
)

// ProtocolVersion is the MCP revision the server speaks.
const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// Server serves MCP over line-delimited JSON-RPC 2.0.
type Server struct {
	engine  *search.Engine
	log     *zap.Logger
	version string
	in      io.Reader
	out     io.Writer
}

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ServerInfo contains server capability information.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerCapabilities defines what the server can do.
type ServerCapabilities struct {
	Tools *ToolsCapability `json:"tools,omitempty"`
}

// ToolsCapability indicates tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ToolResult represents the result of a tool call.
type ToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ToolContent represents content in a tool result.
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewServer creates an MCP server reading requests from in and writing
// responses to out. Diagnostics go to log, never to out.
func NewServer(engine *search.Engine, in io.Reader, out io.Writer, log *zap.Logger, version string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if version == "" {
		version = "devel"
	}
	return &Server{
		engine:  engine,
		log:     log.Named("mcp"),
		version: version,
		in:      in,
		out:     out,
	}
}

// Run serves requests until the input is exhausted. Tool calls inherit ctx.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// MCP uses line-delimited JSON
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	s.log.Info("server starting", zap.String("version", s.version))

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("parse error", zap.Error(err))
			s.sendError(nil, codeParseError, "Parse error", err.Error())
			continue
		}
		s.log.Debug("request", zap.String("method", req.Method), zap.Any("id", req.ID))

		s.handleRequest(ctx, &req)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read requests: %w", err)
	}

	s.log.Info("server shutting down")
	return nil
}

func (s *Server) handleRequest(ctx context.Context, req *Request) {
	// No ID means a notification: no response expected.
	isNotification := req.ID == nil

	switch req.Method {
	case "initialize":
		s.sendResult(req.ID, map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities":    ServerCapabilities{Tools: &ToolsCapability{}},
			"serverInfo":      ServerInfo{Name: "packtrace-mcp", Version: s.version},
		})
	case "initialized", "notifications/initialized", "notifications/cancelled":
		return
	case "tools/list":
		s.sendResult(req.ID, map[string]any{"tools": tools})
	case "tools/call":
		s.handleToolsCall(ctx, req)
	case "ping":
		s.sendResult(req.ID, map[string]any{})
	default:
		if !isNotification {
			s.sendError(req.ID, codeMethodNotFound, "Method not found", req.Method)
		}
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.sendError(req.ID, codeInvalidParams, "Invalid params", err.Error())
			return
		}
	}

	result, err := s.callTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.sendResult(req.ID, errorResult(err))
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		s.sendResult(req.ID, errorResult(err))
		return
	}
	s.sendResult(req.ID, ToolResult{Content: []ToolContent{{Type: "text", Text: string(data)}}})
}

func (s *Server) sendResult(id any, result any) {
	s.send(Response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) sendError(id any, code int, message, data string) {
	s.send(Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	})
}

func (s *Server) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("marshal response", zap.Error(err))
		return
	}
	fmt.Fprintln(s.out, string(data))
}
