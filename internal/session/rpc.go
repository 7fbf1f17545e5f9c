package session

import (
	"context"
	"fmt"
	"net/rpc"
	"sync"
	"time"

	"github.com/tliron/commonlog"
)

// DefaultTimeout bounds session establishment so a dead process or
// unreachable host fails visibly instead of hanging.
const DefaultTimeout = 10 * time.Second

// clientVersion is reported to the backend during the handshake.
const clientVersion = "0.3.0"

// core implements the protocol layer shared by both session variants on
// top of a net/rpc client. The variants own transport setup and teardown.
type core struct {
	log      commonlog.Logger
	listener StateListener
	timeout  time.Duration

	mu     sync.Mutex
	state  State
	client *rpc.Client
}

func newCore(log commonlog.Logger, listener StateListener, timeout time.Duration) core {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return core{
		log:      log,
		listener: listener,
		timeout:  timeout,
		state:    StateUninitialized,
	}
}

// setState transitions the session and notifies the listener. Closed is
// terminal: no transition leaves it.
func (c *core) setState(s State) {
	c.mu.Lock()
	if c.state == StateClosed || c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	listener := c.listener
	c.mu.Unlock()

	if listener != nil {
		listener(s)
	}
}

func (c *core) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *core) setClient(client *rpc.Client) {
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
}

// call performs one RPC, bounded by ctx and the session timeout. Transport
// failures poison the session; errors reported by the backend itself do
// not, so the session keeps serving later requests.
func (c *core) call(ctx context.Context, method string, args, reply any) error {
	c.mu.Lock()
	client := c.client
	state := c.state
	c.mu.Unlock()

	if state != StateActive || client == nil {
		return fmt.Errorf("%w (state: %s)", ErrNotActive, state)
	}

	done := client.Go(method, args, reply, make(chan *rpc.Call, 1)).Done
	select {
	case <-ctx.Done():
		return ctx.Err()
	case call := <-done:
		if call.Error == nil {
			return nil
		}
		if _, isRemote := call.Error.(rpc.ServerError); isRemote {
			return fmt.Errorf("%w: %v", ErrAnalysis, call.Error)
		}
		// The connection or process itself died.
		c.setState(StateErrored)
		return fmt.Errorf("backend transport failed: %w", call.Error)
	}
}

// handshake validates the freshly established connection. The version gate
// is advisory: a backend older than MinEngineVersion logs a warning but the
// session still comes up.
func (c *core) handshake(ctx context.Context, client *rpc.Client) error {
	args := HandshakeArgs{ClientVersion: clientVersion}
	var reply HandshakeReply

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := client.Go(methodHandshake, args, &reply, make(chan *rpc.Call, 1)).Done
	select {
	case <-ctx.Done():
		return fmt.Errorf("handshake timed out: %w", ctx.Err())
	case call := <-done:
		if call.Error != nil {
			return fmt.Errorf("handshake failed: %w", call.Error)
		}
	}

	if versionBefore(reply.EngineVersion, MinEngineVersion) {
		c.log.Warningf("engine version %s is older than supported %s (runtime %s)",
			reply.EngineVersion, MinEngineVersion, reply.RuntimeVersion)
	} else {
		c.log.Infof("connected to engine %s (runtime %s)",
			reply.EngineVersion, reply.RuntimeVersion)
	}
	return nil
}

// Slice requests the backend slice for offsets against a text snapshot.
func (c *core) Slice(ctx context.Context, offsets []int, text string) (SliceResult, error) {
	args := SliceArgs{Offsets: offsets, Text: text}
	var reply SliceReply
	if err := c.call(ctx, methodSlice, args, &reply); err != nil {
		return SliceResult{}, err
	}
	return SliceResult{Code: reply.Code, Elements: reply.Elements}, nil
}

// Diagram requests a dataflow diagram for a text snapshot.
func (c *core) Diagram(ctx context.Context, text string) (string, error) {
	args := DiagramArgs{Text: text}
	var reply DiagramReply
	if err := c.call(ctx, methodDiagram, args, &reply); err != nil {
		return "", err
	}
	return reply.Diagram, nil
}
