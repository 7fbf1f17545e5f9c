package engine

import (
	"io"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("sliver.engine")

// Server accepts JSON-RPC connections and serves the Slicer service on
// each, one goroutine per connection.
type Server struct {
	listener net.Listener

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer wraps an already-bound listener.
func NewServer(listener net.Listener) *Server {
	return &Server{
		listener: listener,
		conns:    make(map[net.Conn]struct{}),
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve runs the accept loop until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		go func(conn net.Conn) {
			defer func() {
				conn.Close()
				s.mu.Lock()
				delete(s.conns, conn)
				s.mu.Unlock()
			}()

			srv := rpc.NewServer()
			if err := srv.RegisterName("Slicer", &Service{}); err != nil {
				log.Errorf("failed to register service: %v", err)
				return
			}
			srv.ServeCodec(jsonrpc.NewServerCodec(conn))
		}(conn)
	}
}

// Shutdown closes the listener and every live connection.
func (s *Server) Shutdown() {
	s.listener.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
	s.conns = make(map[net.Conn]struct{})
}

// rwc glues separate reader and writer ends into the closer the rpc codec
// wants.
type rwc struct {
	io.Reader
	io.Writer
}

func (rwc) Close() error { return nil }

// ServeStdio serves a single session over the given streams, used when the
// engine runs as a child process of the client.
func ServeStdio(r io.Reader, w io.Writer) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("Slicer", &Service{}); err != nil {
		log.Errorf("failed to register service: %v", err)
		return
	}
	srv.ServeCodec(jsonrpc.NewServerCodec(rwc{Reader: r, Writer: w}))
}
