// internal/client/client.go
//
// Game client for the TCP protocol.
// Responsibilities:
//   - Dial the server and run the AUTH_REQUEST / AUTH_RESPONSE exchange.
//   - Send one MOVE_COMMAND at a time and collect MOVE_RESPONSE + FRAME
//     (+ FINAL_RESPONSE when the move ends the game).
//
// Notes:
//   - Commands are serialised; a second Move waits until the previous turn is fully read.
//   - After the final response the connection is closed and Move returns ErrGameOver.

package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/robalobadob/pacman/internal/game"
	"github.com/robalobadob/pacman/internal/wire"
)

var (
	// ErrUnexpectedMessage reports a server message of the wrong kind.
	ErrUnexpectedMessage = errors.New("client: unexpected message")
	// ErrGameOver is returned by Move once the final response has been received.
	ErrGameOver = errors.New("client: game over")
)

// Turn is everything the server sends back for one move.
type Turn struct {
	Move  *wire.MoveResponse
	Frame []byte
	Final *wire.FinalResponse // set only on the winning move
}

// Client is one connection to the game server.
type Client struct {
	conn    net.Conn
	r       *bufio.Reader
	w       *bufio.Writer
	timeout time.Duration

	mu   sync.Mutex
	done bool
}

// Dial connects to addr. timeout bounds each request/response round trip;
// zero means no deadline.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(conn, timeout), nil
}

// New wraps an established connection.
func New(conn net.Conn, timeout time.Duration) *Client {
	return &Client{
		conn:    conn,
		r:       bufio.NewReader(conn),
		w:       bufio.NewWriter(conn),
		timeout: timeout,
	}
}

// Login sends the credentials. A rejected login closes the client; the
// response still carries the server's message.
func (c *Client) Login(user, password string) (*wire.AuthResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(&wire.AuthRequest{User: user, Password: password}); err != nil {
		return nil, err
	}
	res, err := expect[*wire.AuthResponse](c)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		c.finish()
	}
	return res, nil
}

// Move sends one direction and reads the full turn.
func (c *Client) Move(dir game.Direction) (Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return Turn{}, ErrGameOver
	}
	if err := c.send(&wire.MoveCommand{Direction: dir}); err != nil {
		return Turn{}, err
	}

	var t Turn
	var err error
	if t.Move, err = expect[*wire.MoveResponse](c); err != nil {
		return Turn{}, err
	}
	fr, err := expect[*wire.Frame](c)
	if err != nil {
		return Turn{}, err
	}
	t.Frame = fr.Data
	if t.Move.GameOver {
		if t.Final, err = expect[*wire.FinalResponse](c); err != nil {
			return t, err
		}
		c.finish()
	}
	return t, nil
}

// Close hangs up.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = true
	return c.conn.Close()
}

func (c *Client) finish() {
	c.done = true
	_ = c.conn.Close()
}

func (c *Client) send(m wire.Message) error {
	if c.timeout > 0 {
		_ = c.conn.SetDeadline(time.Now().Add(c.timeout))
	}
	if err := wire.Write(c.w, m); err != nil {
		return err
	}
	return c.w.Flush()
}

func expect[T wire.Message](c *Client) (T, error) {
	var zero T
	m, err := wire.Read(c.r)
	if err != nil {
		return zero, err
	}
	v, ok := m.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %v, want %v", ErrUnexpectedMessage, m.Kind(), zero.Kind())
	}
	return v, nil
}
