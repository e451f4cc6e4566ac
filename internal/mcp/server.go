package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/yogeshhrathod/bitbucket-mcp/internal/bitbucket"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/logging"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/tools"
	"github.com/yogeshhrathod/bitbucket-mcp/internal/version"
)

const protocolVersion = "2024-11-05"

// Server speaks line-delimited JSON-RPC over a reader/writer pair,
// normally stdin and stdout. Logging goes elsewhere; the writer carries
// only protocol frames.
type Server struct {
	in       io.Reader
	out      io.Writer
	registry *tools.Registry
	log      *logging.Logger
}

func NewServer(in io.Reader, out io.Writer, registry *tools.Registry, log *logging.Logger) *Server {
	return &Server{
		in:       in,
		out:      out,
		registry: registry,
		log:      log.Sub("mcp"),
	}
}

// Run reads requests until the input stream closes.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	s.log.Info().Msg("listening for requests")

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		s.handleRequest(ctx, line)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		s.log.Error().Err(err).Msg("error reading input")
		return err
	}
	s.log.Info().Msg("input closed, shutting down")
	return nil
}

func (s *Server) handleRequest(ctx context.Context, line string) {
	var req JSONRPCRequest
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.log.Warn().Err(err).Msg("parse error")
		s.sendError(nil, -32700, "Parse error", err.Error())
		return
	}

	s.log.Debug().Str("method", req.Method).Msg("handling request")

	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "tools/list":
		s.handleListTools(req)
	case "tools/call":
		s.handleCallTool(ctx, req)
	case "notifications/initialized":
		// no-op
		s.log.Debug().Msg("received initialized notification")
	default:
		s.sendError(req.ID, -32601, "Method not found", fmt.Sprintf("Unknown method: %s", req.Method))
	}
}

func (s *Server) handleInitialize(req JSONRPCRequest) {
	s.sendResponse(req.ID, InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities:    Capabilities{Tools: map[string]interface{}{}},
		ServerInfo:      ServerInfo{Name: "bitbucket-mcp", Version: version.Version},
	})
}

func (s *Server) handleListTools(req JSONRPCRequest) {
	s.sendResponse(req.ID, ListToolsResult{Tools: s.registry.Definitions()})
}

func (s *Server) handleCallTool(ctx context.Context, req JSONRPCRequest) {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, -32602, "Invalid params", err.Error())
		return
	}

	log := s.log.With("invocation", uuid.NewString())
	log.Info().Str("tool", params.Name).Msg("calling tool")

	text, err := s.registry.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		log.Warn().Err(err).Str("tool", params.Name).Msg("tool call failed")
		s.sendToolError(req.ID, toolErrorText(err))
		return
	}

	s.sendResponse(req.ID, ToolResult{
		Content: []ContentItem{{Type: "text", Text: text}},
	})
}

// toolErrorText renders a failure for the result envelope. Structured API
// errors are serialized whole so callers see the kind, suggestion, and
// retryability; anything else becomes its plain message.
func toolErrorText(err error) string {
	var serr *bitbucket.StructuredError
	if errors.As(err, &serr) {
		data, merr := json.MarshalIndent(serr, "", "  ")
		if merr == nil {
			return string(data)
		}
	}
	return err.Error()
}

func (s *Server) sendResponse(id interface{}, result interface{}) {
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("error marshaling response")
		return
	}
	fmt.Fprintln(s.out, string(data))
}

func (s *Server) sendError(id interface{}, code int, message string, data interface{}) {
	s.log.Warn().Int("code", code).Str("message", message).Msg("sending error response")
	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message, Data: data},
	}
	jsonData, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("error marshaling error response")
		return
	}
	fmt.Fprintln(s.out, string(jsonData))
}

func (s *Server) sendToolError(id interface{}, msg string) {
	s.sendResponse(id, ToolResult{
		Content: []ContentItem{{Type: "text", Text: msg}},
		IsError: true,
	})
}
