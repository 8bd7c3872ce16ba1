// Package server exposes conversations over HTTP using gin.
//
// Each session owns one agent. Requests against a session that already has
// a turn in flight fail with 409 Conflict.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/toolchat"
	"github.com/fwojciec/toolchat/agent"
	tcjson "github.com/fwojciec/toolchat/json"
	"github.com/gin-gonic/gin"
)

// AgentFactory creates the agent behind a new session.
type AgentFactory func() *agent.Agent

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// Server routes HTTP requests to per-session agents.
type Server struct {
	newAgent AgentFactory
	tools    []toolchat.Capability
	logger   *slog.Logger
	engine   *gin.Engine

	mu       sync.RWMutex
	sessions map[string]*agent.Agent
}

// New returns a Server creating sessions with newAgent. tools is what
// GET /v1/tools reports.
func New(newAgent AgentFactory, tools []toolchat.Capability, opts ...Option) *Server {
	s := &Server{
		newAgent: newAgent,
		tools:    tools,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		sessions: make(map[string]*agent.Agent),
	}
	for _, o := range opts {
		o(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.logRequests)
	v1 := engine.Group("/v1")
	{
		v1.GET("/tools", s.handleTools)
		v1.POST("/sessions", s.handleCreateSession)
		v1.DELETE("/sessions/:id", s.withSession(s.handleDeleteSession))
		v1.POST("/sessions/:id/chat", s.withSession(s.handleChat))
		v1.POST("/sessions/:id/chat/stream", s.withSession(s.handleChatStream))
		v1.GET("/sessions/:id/history", s.withSession(s.handleHistory))
		v1.DELETE("/sessions/:id/history", s.withSession(s.handleClearHistory))
	}
	s.engine = engine
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully, giving in-flight requests up to 10 seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.InfoContext(c.Request.Context(), "request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

type toolResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleTools(c *gin.Context) {
	out := make([]toolResponse, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, toolResponse{Name: t.Name, Description: t.Description})
	}
	c.JSON(http.StatusOK, gin.H{"tools": out})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	a := s.newAgent()
	s.mu.Lock()
	s.sessions[a.ID()] = a
	s.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"id": a.ID()})
}

func (s *Server) handleDeleteSession(c *gin.Context, a *agent.Agent) {
	s.mu.Lock()
	delete(s.sessions, a.ID())
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

// withSession resolves the :id parameter, answering 404 for unknown ids.
func (s *Server) withSession(h func(*gin.Context, *agent.Agent)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.RLock()
		a, ok := s.sessions[c.Param("id")]
		s.mu.RUnlock()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h(c, a)
	}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	Reply      string `json:"reply"`
	StopReason string `json:"stop_reason"`
	Rounds     int    `json:"rounds"`
}

func (s *Server) handleChat(c *gin.Context, a *agent.Agent) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	res, err := a.Run(c.Request.Context(), req.Message)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chatResponse{
		Reply:      res.Text,
		StopReason: string(res.StopReason),
		Rounds:     res.Rounds,
	})
}

// handleChatStream answers with server-sent events: one "delta" per text
// chunk, then "done" with the stop reason, or "error" if the turn failed
// after streaming began.
func (s *Server) handleChatStream(c *gin.Context, a *agent.Agent) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	ctx := c.Request.Context()
	wrote := false
	res, err := a.RunStream(ctx, req.Message, func(chunk string) bool {
		wrote = true
		c.SSEvent("delta", gin.H{"text": chunk})
		c.Writer.Flush()
		return ctx.Err() == nil
	})
	switch {
	case err != nil && !wrote:
		s.fail(c, err)
		return
	case err != nil:
		s.logger.WarnContext(ctx, "stream failed", "session", a.ID(), "error", err)
		c.SSEvent("error", gin.H{"error": err.Error()})
		c.Writer.Flush()
		return
	}
	c.SSEvent("done", gin.H{"stop_reason": string(res.StopReason)})
	c.Writer.Flush()
}

func (s *Server) handleHistory(c *gin.Context, a *agent.Agent) {
	data, err := tcjson.MarshalSession(a.Session())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (s *Server) handleClearHistory(c *gin.Context, a *agent.Agent) {
	if err := a.ClearHistory(); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, toolchat.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, toolchat.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	default:
		s.logger.ErrorContext(c.Request.Context(), "chat failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
