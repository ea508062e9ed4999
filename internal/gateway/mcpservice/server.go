// Package mcpservice exposes the image tools over the Model Context Protocol.
// The same tool set is served on stdio for local clients and on an HTTP
// route for remote ones.
package mcpservice

import (
	"context"
	"io"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/tansive/nanobanana/internal/common/httpx"
	"github.com/tansive/nanobanana/internal/common/jsonrpc"
	"github.com/tansive/nanobanana/internal/common/middleware"
	"github.com/tansive/nanobanana/internal/gateway/artifact"
	"github.com/tansive/nanobanana/internal/gateway/genclient"
	"github.com/tansive/nanobanana/internal/gateway/params"
	"github.com/tansive/nanobanana/internal/gateway/session"
	"github.com/tansive/nanobanana/internal/gateway/versions"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxRequestBytes bounds a JSON-RPC message on the HTTP route. Tool calls
// carry paths, not image bytes.
const maxRequestBytes = 1 << 20

// Options configures a Service.
type Options struct {
	DefaultModel   string        // model used when a tool call names none
	HandleCORS     bool          // add permissive CORS headers on the HTTP route
	RequestTimeout time.Duration // deadline for one HTTP request, 0 for none
}

// Service owns the MCP server and the collaborators its tools call.
type Service struct {
	client       *genclient.Client
	sessions     session.SessionManager
	store        *artifact.Store
	defaultModel string
	opts         Options
	srv          *server.MCPServer
}

// New builds a Service and registers every tool.
func New(client *genclient.Client, sessions session.SessionManager, store *artifact.Store, opts Options) (*Service, error) {
	if client == nil || sessions == nil || store == nil {
		return nil, ErrMissingDependency
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = params.DefaultModel
	}
	s := &Service{
		client:       client,
		sessions:     sessions,
		store:        store,
		defaultModel: opts.DefaultModel,
		opts:         opts,
		srv: server.NewMCPServer(
			versions.ServerName,
			versions.Version,
			server.WithToolCapabilities(true),
			server.WithRecovery(),
		),
	}
	s.loadTools()
	return s, nil
}

func (s *Service) loadTools() {
	handlers := map[string]toolFunc{
		ToolGenerateImage:       s.generateImage,
		ToolEditImage:           s.editImage,
		ToolComposeImages:       s.composeImages,
		ToolSearchGroundedImage: s.searchGroundedImage,
		ToolGenerateInterleaved: s.generateInterleaved,
		ToolStartImageChat:      s.startImageChat,
		ToolContinueImageChat:   s.continueImageChat,
		ToolEndImageChat:        s.endImageChat,
		ToolListChatSessions:    s.listChatSessions,
		ToolValidateDigest:      s.validateDigest,
	}
	tools := toolDefinitions(s.defaultModel)
	for _, tool := range tools {
		s.srv.AddTool(tool, s.handle(tool.Name, handlers[tool.Name]))
	}
	log.Info().Int("numTools", len(tools)).Msg("loaded tools")
}

// Tools returns the tool definitions announced to clients.
func (s *Service) Tools() []mcp.Tool {
	return toolDefinitions(s.defaultModel)
}

// MCPServer returns the underlying protocol server.
func (s *Service) MCPServer() *server.MCPServer {
	return s.srv
}

// ServeStdio serves MCP on in and out until ctx is done or in is closed.
func (s *Service) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.srv)
	stdio.SetErrorLogger(stdlog.New(log.Logger, "", 0))
	log.Ctx(ctx).Info().Msg("serving MCP on stdio")
	return stdio.Listen(ctx, in, out)
}

// Router returns the HTTP handler: POST /mcp for JSON-RPC messages, plus
// /ready and /version.
func (s *Service) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.PanicHandler)
	if s.opts.HandleCORS {
		r.Use(handleCORS)
	}
	r.Group(func(r chi.Router) {
		if s.opts.RequestTimeout > 0 {
			r.Use(middleware.SetTimeout(s.opts.RequestTimeout))
		}
		r.Post("/mcp", s.handleMCP)
	})
	r.Get("/ready", s.getReadiness)
	r.Get("/version", s.getVersion)
	return r
}

// handleMCP passes one JSON-RPC message to the MCP server. Notifications
// have no response and are answered with 202.
func (s *Service) handleMCP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		httpx.ErrRequestTooLarge(maxRequestBytes).Send(w)
		return
	}
	if !gjson.ValidBytes(body) {
		sendParseError(w)
		return
	}
	resp := s.srv.HandleMessage(r.Context(), body)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, resp)
}

// sendParseError answers a body that is not JSON with a JSON-RPC parse
// error, since no request id can be recovered.
func sendParseError(w http.ResponseWriter) {
	rsp, err := jsonrpc.ConstructErrorResponse(nil, jsonrpc.ErrCodeParseError, "parse error", nil)
	if err != nil {
		httpx.ErrUnableToParseReqData().Send(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	w.Write(rsp)
}

// GetVersionRsp represents the response for version information.
type GetVersionRsp struct {
	ServerVersion string `json:"serverVersion"`
	DefaultModel  string `json:"defaultModel"`
}

func (s *Service) getVersion(w http.ResponseWriter, r *http.Request) {
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, &GetVersionRsp{
		ServerVersion: versions.ServerName + " " + versions.Version,
		DefaultModel:  s.defaultModel,
	})
}

func (s *Service) getReadiness(w http.ResponseWriter, r *http.Request) {
	httpx.SendJsonRsp(r.Context(), w, http.StatusOK, map[string]any{
		"status":   "ready",
		"sessions": len(s.sessions.ListSessions()),
	})
}

func handleCORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Mcp-Session-Id"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}

func marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, ErrMCPServiceError.MsgErr("unable to encode tool result", err)
	}
	return b, nil
}
