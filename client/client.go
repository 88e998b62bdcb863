package client

import (
	"context"
	"log"

	"nhooyr.io/websocket"

	"padterm/constants"
	"padterm/protocol"
	"padterm/stream"
)

// Client is one websocket viewer. Frames queued with Send are drained by
// WriteLoop so a slow viewer never blocks the refresh path.
type Client struct {
	bs          *stream.Stream
	conn        *websocket.Conn
	localBuffer []byte
	IP          string
	SessionID   string
}

func New(conn *websocket.Conn) *Client {
	return &Client{
		bs:          stream.New(),
		conn:        conn,
		localBuffer: make([]byte, constants.BufferSize),
	}
}

// DirectSend sends a frame to the client without going through the stream
func (c *Client) DirectSend(cmd byte, p []byte) error {
	buff := make([]byte, constants.BufferSize)
	n, err := protocol.Encode(buff, cmd, p)
	if err != nil {
		return err
	}

	err = c.conn.Write(context.Background(), websocket.MessageBinary, buff[:n])
	if err != nil {
		if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
			log.Printf("error writing to websocket: %s, %v\r\n",
				err, websocket.CloseStatus(err))
		}
		return err
	}
	return nil
}

// Send queues a frame for the client on its stream
func (c *Client) Send(cmd byte, p []byte) (n int, err error) {
	return c.bs.WriteFrame(cmd, p)
}

// Write queues raw repaint bytes as a FRAME package
func (c *Client) Write(p []byte) (n int, err error) {
	return c.Send(constants.FRAME, p)
}

// ReadFromWS reads from the websocket
func (c *Client) ReadFromWS(p []byte) (n int, err error) {
	_, r, err := c.conn.Read(context.Background())
	if err != nil {
		return 0, err
	}

	n = copy(p, r)
	return n, nil
}

// Close closes the websocket connection
func (c *Client) Close() error {
	_ = c.bs.Close()
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// WriteLoop drains the client stream into the websocket
func (c *Client) WriteLoop() {
	for {
		n, err := c.bs.Read(c.localBuffer)
		if err != nil {
			return
		}

		err = c.conn.Write(context.Background(), websocket.MessageBinary, c.localBuffer[:n])
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				log.Printf("error writing to websocket: %s, %v\r\n",
					err, websocket.CloseStatus(err))
			}
			return
		}
	}
}
