// Package agent serves the extension message router over a unix socket using
// JSON-RPC 2.0. The method is the message type, the params are the message.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/MrSnakeDoc/arvai/internal/extension"
	"github.com/MrSnakeDoc/arvai/internal/logger"
)

// Handler runs one extension message.
type Handler interface {
	Handle(ctx context.Context, msg extension.Message) (any, error)
}

// Server accepts socket connections until its context ends.
type Server struct {
	path    string
	handler Handler
	logger  logger.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[*jsonrpc2.Conn]struct{}
	ready    chan struct{}
}

func NewServer(socketPath string, h Handler, log logger.Logger) *Server {
	return &Server{
		path:    socketPath,
		handler: h,
		logger:  log,
		conns:   make(map[*jsonrpc2.Conn]struct{}),
		ready:   make(chan struct{}),
	}
}

// Ready is closed once the socket accepts connections.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Serve listens on the socket and blocks until ctx is cancelled. A stale
// socket file from a previous run is replaced.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create socket dir: %w", err)
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale socket: %w", err)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	if err := os.Chmod(s.path, 0o700); err != nil {
		_ = ln.Close()
		return fmt.Errorf("failed to chmod socket: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	close(s.ready)

	s.logger.Info("agent listening", logger.String("socket", s.path))

	go func() {
		<-ctx.Done()
		s.shutdown()
	}()

	return s.acceptLoop(ctx, ln)
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// nextAcceptDelay doubles the wait after each consecutive accept failure.
func nextAcceptDelay(prev time.Duration) time.Duration {
	if prev == 0 {
		return minAcceptDelay
	}
	return min(prev*2, maxAcceptDelay)
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	var delay time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			delay = nextAcceptDelay(delay)
			s.logger.Warn("accept failed, retrying",
				logger.Duration("retry_in", delay),
				logger.Error(err))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		delay = 0
		s.track(ctx, nc)
	}
}

func (s *Server) track(ctx context.Context, nc net.Conn) {
	stream := jsonrpc2.NewBufferedStream(nc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-conn.DisconnectNotify()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()
}

func (s *Server) handle(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	var msg extension.Message
	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &msg); err != nil {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
		}
	}
	msg.Type = req.Method

	res, err := s.handler.Handle(ctx, msg)
	if err != nil {
		if errors.Is(err, extension.ErrUnknownMessage) {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: err.Error()}
		}
		return nil, err
	}
	return res, nil
}

func (s *Server) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		_ = s.listener.Close()
	}
	for conn := range s.conns {
		_ = conn.Close()
	}
	_ = os.Remove(s.path)
	s.logger.Info("agent stopped")
}
