// Terminal viewer: attaches to a running padterm and mirrors the shared
// screen on the local terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
	"nhooyr.io/websocket"

	"padterm/constants"
	"padterm/protocol"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	addr := flag.String("addr", "ws://localhost:2200/ws", "padterm websocket address")
	flag.Parse()

	c, _, err := websocket.Dial(context.Background(), *addr, nil)
	if err != nil {
		log.Fatalf("error connecting to %s: %s\r\n", *addr, err)
	}
	defer c.CloseNow()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("error making raw: %s\r\n", err)
	}
	restoreTerm := func() {
		_ = term.Restore(int(os.Stdin.Fd()), oldState)
	}
	defer restoreTerm()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, os.Interrupt)
	go func() {
		for caux := range ch {
			switch caux {
			case syscall.SIGTERM, os.Interrupt:
				c.Close(websocket.StatusNormalClosure, "")
				restoreTerm()
				os.Exit(0)
			}
		}
	}()

	for {
		_, msg, err := c.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				break
			}
			log.Printf("Read error: %v\r\n", err)
			break
		}

		for len(msg) > 0 {
			cmd, data, err := protocol.Decode(msg)
			if err != nil {
				log.Printf("decode error: %v\r\n", err)
				break
			}
			msg = msg[protocol.HeaderSize+len(data)+protocol.TrailerSize:]

			switch cmd {
			case constants.FRAME:
				_, _ = os.Stdout.Write(data)
			case constants.RESIZE:
				var rows, cols int
				_, err := fmt.Sscanf(string(data), "%d:%d", &rows, &cols)
				if err != nil {
					continue
				}
				fmt.Printf("\033[8;%d;%dt", rows, cols)
			case constants.CLEAR:
				os.Stdout.Write([]byte("\033[2J"))
			}
		}
	}

	c.Close(websocket.StatusNormalClosure, "")
}
