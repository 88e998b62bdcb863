// Package display fans the composited virtual screen out to its consumers:
// the local terminal, attached websocket viewers and the optional frame
// recorder. Display is the physical-flush collaborator handed to the
// compositing core.
package display

import (
	"fmt"
	"io"
	"log"
	"sync"

	"padterm/client"
	"padterm/constants"
	"padterm/pad"
	"padterm/playback"
	"padterm/sillyname"
	"padterm/term"
)

type Display struct {
	Title  string
	Screen *pad.Screen
	Rec    *playback.Playback // optional, records flushed frames

	out io.Writer // local terminal, may be nil

	mu        sync.Mutex
	clients   []*client.Client
	streaming bool
}

// New creates a display with a virtual screen of the given size. Flushed
// output goes to out and to every attached client.
func New(rows, cols int, out io.Writer) (*Display, error) {
	scr, err := pad.NewScreen(rows, cols)
	if err != nil {
		return nil, err
	}
	d := &Display{
		Title:  sillyname.Generate(),
		Screen: scr,
		out:    out,
	}
	scr.Device = d
	return d, nil
}

// SetStreaming turns viewer broadcast on or off. The local terminal is
// always painted.
func (d *Display) SetStreaming(on bool) {
	d.mu.Lock()
	d.streaming = on
	d.mu.Unlock()
}

func (d *Display) Streaming() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.streaming
}

// Flush implements pad.Flusher: render the virtual screen's dirty regions
// and deliver them everywhere at once.
func (d *Display) Flush(virt *pad.Window) error {
	b := term.Render(virt)
	if len(b) == 0 {
		return nil
	}

	if d.out != nil {
		if _, err := d.out.Write(b); err != nil {
			return err
		}
	}

	d.broadcast(constants.FRAME, b)

	if d.Rec != nil {
		if err := d.Rec.Rec(constants.FRAME, b); err != nil {
			log.Printf("error recording frame: %s\r\n", err)
		}
	}
	return nil
}

// AttachClient registers a websocket viewer and brings it up to date with
// the current screen content.
func (d *Display) AttachClient(c *client.Client) {
	if d.Streaming() {
		rows, cols := d.Screen.Rows(), d.Screen.Cols()
		_ = c.DirectSend(constants.RESIZE, []byte(fmt.Sprintf("%d:%d", rows, cols)))
		_ = c.DirectSend(constants.FRAME, term.Snapshot(d.Screen.Virtual()))
	}

	d.mu.Lock()
	d.clients = append(d.clients, c)
	d.mu.Unlock()

	go c.WriteLoop()
}

// DetachClient removes and closes a viewer.
func (d *Display) DetachClient(c *client.Client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.remove(c)
}

// remove must be called with d.mu held
func (d *Display) remove(c *client.Client) {
	for i, cl := range d.clients {
		if cl == c {
			_ = cl.Close()
			d.clients = append(d.clients[:i], d.clients[i+1:]...)
			return
		}
	}
}

// CloseAll detaches every viewer.
func (d *Display) CloseAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.clients {
		if err := c.Close(); err != nil {
			log.Printf("error closing websocket: %s\r\n", err)
		}
	}
	d.clients = nil
}

// Clients returns the number of attached viewers.
func (d *Display) Clients() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clients)
}

// Broadcast queues a framed command for every attached viewer, dropping
// clients whose stream is gone.
func (d *Display) Broadcast(cmd byte, payload []byte) {
	d.broadcast(cmd, payload)
}

func (d *Display) broadcast(cmd byte, payload []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.streaming {
		return
	}

	for i := 0; i < len(d.clients); {
		if _, err := d.clients[i].Send(cmd, payload); err != nil {
			log.Printf("error writing to viewer: %s\r\n", err)
			d.remove(d.clients[i])
			continue
		}
		i++
	}
}

// Resize adjusts the virtual screen to a new physical size and tells the
// viewers; the queued full repaint reaches them on the next flush.
func (d *Display) Resize(rows, cols int) error {
	if err := d.Screen.Resize(rows, cols); err != nil {
		return err
	}
	d.broadcast(constants.RESIZE, []byte(fmt.Sprintf("%d:%d", rows, cols)))

	if d.Rec != nil {
		payload := []byte(fmt.Sprintf("%d:%d", rows, cols))
		if err := d.Rec.Rec(constants.RESIZE, payload); err != nil {
			log.Printf("error recording resize: %s\r\n", err)
		}
	}
	return nil
}
