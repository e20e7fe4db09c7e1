package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const connTimeout = 5 * time.Second

// StatusFunc builds the current status on demand.
type StatusFunc func(ctx context.Context) Status

type Server struct {
	path   string
	status StatusFunc
	logger zerolog.Logger

	ln   net.Listener
	once sync.Once
	wg   sync.WaitGroup
}

// Listen binds the socket at path. A stale socket left by a dead instance
// is replaced; a live one is an error, and so is any path that is not a
// socket. The socket is created owner-only.
func Listen(path string, status StatusFunc, logger zerolog.Logger) (*Server, error) {
	if conn, err := net.DialTimeout("unix", path, time.Second); err == nil {
		conn.Close()
		return nil, fmt.Errorf("another btspeaker is already listening on %s", path)
	}
	if fi, err := os.Lstat(path); err == nil {
		if fi.Mode()&os.ModeSocket == 0 {
			return nil, fmt.Errorf("%s exists and is not a socket", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("remove stale socket: %w", err)
		}
	}

	old := unix.Umask(0o077)
	ln, err := net.Listen("unix", path)
	unix.Umask(old)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return &Server{path: path, status: status, logger: logger, ln: ln}, nil
}

func (s *Server) Path() string { return s.path }

// Serve answers requests until ctx is cancelled or Close is called.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	s.logger.Info().Str("socket", s.path).Msg("status socket listening")
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(connTimeout))

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		json.NewEncoder(conn).Encode(Response{Error: "invalid request: " + err.Error()})
		return
	}
	if err := json.NewEncoder(conn).Encode(s.handleRequest(ctx, req)); err != nil {
		s.logger.Debug().Err(err).Msg("write status response")
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) Response {
	switch req.Command {
	case CommandPing:
		return Response{}
	case CommandStatus:
		st := s.status(ctx)
		return Response{Status: &st}
	default:
		return Response{Error: fmt.Sprintf("unknown command: %q", req.Command)}
	}
}

// Close stops the listener and removes the socket file.
func (s *Server) Close() error {
	var err error
	s.once.Do(func() {
		err = s.ln.Close()
		os.Remove(s.path)
	})
	return err
}
