package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docrag/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

const (
	serverName        = "docrag"
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

const instructions = `docrag answers questions from the user's local documents.
Call retrieve_chunks with a natural-language query to get the most relevant
passages. Use list_documents to discover document ids, then pass them as
document_ids to restrict retrieval. Full document text is available as the
resource docrag://documents/{documentId}.`

// Server exposes retrieval and the document list over MCP.
type Server struct {
	ports  *Ports
	log    logger.Logger
	server *mcp.Server
}

// NewServer creates a server over ports. ports.Retrieval is required.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	log := ports.Logger
	if log == nil {
		log = logger.Discard()
	}

	s := &Server{
		ports: ports,
		log:   log.With("component", "mcp"),
		server: mcp.NewServer(
			&mcp.Implementation{Name: serverName, Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("serving over stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.httpHandler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("http shutdown failed", "error", err)
		}
	}()

	s.log.Info("serving over http", "addr", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		return nil
	}
	return err
}

func (s *Server) httpHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}
