package session

import (
	"context"
	"fmt"
	"net"
	"net/rpc/jsonrpc"
	"time"

	"github.com/tliron/commonlog"
)

// RemoteSession talks to an already-running analysis service over TCP,
// JSON-RPC framed.
type RemoteSession struct {
	core
	address string
	conn    net.Conn
}

// NewRemote prepares a remote session for address (host:port). Nothing is
// dialed until Initialize.
func NewRemote(address string, listener StateListener, timeout time.Duration) *RemoteSession {
	return &RemoteSession{
		core:    newCore(commonlog.GetLogger("sliver.session.remote"), listener, timeout),
		address: address,
	}
}

// Initialize dials the service and performs the handshake. Connection
// refusal, dial timeout and handshake failure all land in the errored
// state within the configured timeout.
func (s *RemoteSession) Initialize(ctx context.Context) error {
	s.setState(StateConnecting)

	conn, err := net.DialTimeout("tcp", s.address, s.timeout)
	if err != nil {
		s.setState(StateErrored)
		return fmt.Errorf("failed to connect to %s: %w", s.address, err)
	}
	s.conn = conn

	client := jsonrpc.NewClient(conn)
	if err := s.handshake(ctx, client); err != nil {
		client.Close()
		s.setState(StateErrored)
		return err
	}

	s.setClient(client)
	s.setState(StateActive)
	return nil
}

// Close drops the connection. Safe to call repeatedly and from any state.
func (s *RemoteSession) Close() error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	s.state = StateClosed
	client := s.client
	s.client = nil
	listener := s.listener
	s.mu.Unlock()

	if client != nil {
		client.Close()
	} else if s.conn != nil {
		s.conn.Close()
	}
	if listener != nil {
		listener(StateClosed)
	}
	return nil
}

var _ Session = (*RemoteSession)(nil)
var _ Session = (*LocalSession)(nil)
