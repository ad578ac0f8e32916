package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/MrSnakeDoc/arvai/internal/extension"
)

// Sender delivers a message to the background and decodes the answer into out.
type Sender interface {
	Send(ctx context.Context, msg extension.Message, out any) error
	Close() error
}

// Client talks to a running agent.
type Client struct {
	conn *jsonrpc2.Conn
}

// Dial connects to the agent socket.
func Dial(ctx context.Context, socketPath string) (*Client, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, err
	}

	stream := jsonrpc2.NewBufferedStream(nc, jsonrpc2.VSCodeObjectCodec{})
	return &Client{conn: jsonrpc2.NewConn(ctx, stream, noopHandler{})}, nil
}

func (c *Client) Send(ctx context.Context, msg extension.Message, out any) error {
	if err := c.conn.Call(ctx, msg.Type, msg, out); err != nil {
		var rpcErr *jsonrpc2.Error
		if errors.As(err, &rpcErr) && rpcErr.Code == jsonrpc2.CodeMethodNotFound {
			return fmt.Errorf("%w: %q", extension.ErrUnknownMessage, msg.Type)
		}
		return err
	}
	return nil
}

func (c *Client) Close() error { return c.conn.Close() }

// The agent never calls back.
type noopHandler struct{}

func (noopHandler) Handle(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) {}

// Local runs messages against an in-process router, with the same JSON
// round trip as the socket.
type Local struct {
	handler Handler
}

func NewLocal(h Handler) *Local { return &Local{handler: h} }

func (l *Local) Send(ctx context.Context, msg extension.Message, out any) error {
	res, err := l.handler.Handle(ctx, msg)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (l *Local) Close() error { return nil }
