package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/rpc/jsonrpc"
	"os/exec"
	"time"

	"github.com/tliron/commonlog"
)

// LocalSession runs the analysis engine as a child process and speaks
// JSON-RPC over its stdio pipes.
type LocalSession struct {
	core
	command string
	args    []string
	cmd     *exec.Cmd
}

// NewLocal prepares a local session spawning command. Nothing happens until
// Initialize.
func NewLocal(command string, args []string, listener StateListener, timeout time.Duration) *LocalSession {
	return &LocalSession{
		core:    newCore(commonlog.GetLogger("sliver.session.local"), listener, timeout),
		command: command,
		args:    args,
	}
}

// stdioPipe joins the child's stdin and stdout into one ReadWriteCloser for
// the rpc codec.
type stdioPipe struct {
	io.ReadCloser
	io.WriteCloser
}

func (p stdioPipe) Close() error {
	werr := p.WriteCloser.Close()
	rerr := p.ReadCloser.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// Initialize spawns the process and performs the handshake. On any failure
// the session lands in the errored state and the process, if it started, is
// reaped.
func (s *LocalSession) Initialize(ctx context.Context) error {
	s.setState(StateStarting)

	cmd := exec.Command(s.command, s.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		s.setState(StateErrored)
		return fmt.Errorf("failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		s.setState(StateErrored)
		return fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		s.setState(StateErrored)
		return fmt.Errorf("failed to open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		s.setState(StateErrored)
		return fmt.Errorf("failed to spawn %q: %w", s.command, err)
	}
	s.cmd = cmd

	// Engine stderr goes to our log, line by line.
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			s.log.Debugf("engine: %s", scanner.Text())
		}
	}()

	client := jsonrpc.NewClient(stdioPipe{ReadCloser: stdout, WriteCloser: stdin})

	if err := s.handshake(ctx, client); err != nil {
		client.Close()
		_ = cmd.Process.Kill()
		go cmd.Wait()
		s.setState(StateErrored)
		return err
	}

	s.setClient(client)
	s.setState(StateActive)

	// An exiting process invalidates the session; in-flight calls fail
	// through the closed codec.
	go func() {
		err := cmd.Wait()
		if s.State() == StateActive {
			s.log.Errorf("engine process exited: %v", err)
			s.setState(StateErrored)
		}
		client.Close()
	}()

	return nil
}

// Close terminates the engine process. Safe to call repeatedly and from any
// state.
func (s *LocalSession) Close() error {
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
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	if listener != nil {
		listener(StateClosed)
	}
	return nil
}
