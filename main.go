package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"
	"nhooyr.io/websocket"

	"padterm/assets"
	"padterm/client"
	"padterm/config"
	"padterm/constants"
	"padterm/display"
	"padterm/luaengine"
	"padterm/pad"
	"padterm/playback"
	"padterm/session"
	"padterm/vterm"
)

type termIO struct{}

var (
	termio                termIO
	d                     *display.Display
	vt                    *vterm.Term
	scrollPad             *pad.Window
	refreshMutex          sync.Mutex
	scrollOffset          int
	ptmx                  *os.File
	GitTag                string = "0.0.0v"
	sizeWidth, sizeHeight int
	sc                    *session.Control
)

// refresh composites the visible tail of the scrollback pad onto the
// virtual screen and flushes it. scrollOffset moves the viewport back
// into the history.
func refresh() {
	refreshMutex.Lock()
	defer refreshMutex.Unlock()

	h := d.Screen.Rows()
	w := d.Screen.Cols()

	line, _ := vt.CursorPos()
	base := line - h + 1
	if base < 0 {
		base = 0
	}
	top := base - scrollOffset
	if top < 0 {
		top = 0
	}

	err := d.Screen.Refresh(scrollPad, top, 0, 0, 0, h-1, w-1)
	if err != nil {
		log.Printf("error refreshing screen: %s\r\n", err)
	}
}

// scrollBy moves the viewport n rows back into the history (negative n
// moves forward) and repaints.
func scrollBy(n int) {
	refreshMutex.Lock()
	h := d.Screen.Rows()
	line, _ := vt.CursorPos()
	base := line - h + 1
	if base < 0 {
		base = 0
	}
	scrollOffset += n
	if scrollOffset > base {
		scrollOffset = base
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	d.Screen.Virtual().Touch()
	refreshMutex.Unlock()

	refresh()
}

func (o termIO) Write(p []byte) (n int, err error) {
	n = len(p)

	// an unknown escape sequence must not kill the copy loop: the
	// interpreter is already back in its normal state, so log the
	// sequence and keep feeding it the rest of the buffer
	for len(p) > 0 {
		w, err := vt.Write(p)
		if err == nil {
			break
		}
		log.Printf("error writing to terminal buffer: %s\r\n", err)
		p = p[w:]
	}

	// do not chase the output while the operator is reading history
	if scrollOffset == 0 {
		refresh()
	}
	return n, nil
}

func runCmd() {
	var err error
	cmdAux := config.CFG.Command
	cmd := strings.Split(cmdAux, " ")

	c := exec.Command(cmd[0], cmd[1:]...)
	// Start the command with a pty.
	ptmx, err = pty.Start(c)
	if err != nil {
		log.Fatalf("error starting pty: %s\r\n", err)
	}

	// Set stdin in raw mode.
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("error setting stdin in raw mode: %s\r\n", err)
	}

	restoreTerm := func() {
		_ = ptmx.Close()
		_ = term.Restore(int(os.Stdin.Fd()), oldState)
	}
	defer restoreTerm()

	// Handle signals
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGWINCH, syscall.SIGTERM, os.Interrupt)
	go func() {
		for caux := range ch {
			switch caux {
			case syscall.SIGWINCH:
				// Update window size.
				_ = pty.InheritSize(os.Stdin, ptmx)
				var err error
				sizeWidth, sizeHeight, err = term.GetSize(
					int(os.Stdin.Fd()))
				if err != nil {
					log.Fatalf("error getting size: %s\r\n", err)
				}

				refreshMutex.Lock()
				err = d.Resize(sizeHeight, sizeWidth)
				refreshMutex.Unlock()
				if err != nil {
					log.Printf("error resizing screen: %s\r\n", err)
				}

				refresh()

			case syscall.SIGTERM, os.Interrupt:
				d.CloseAll()
				restoreTerm()
				os.Exit(0)
			}
		}
	}()
	ch <- syscall.SIGWINCH // Initial resize.

	// Copy stdin to the pty and the pty to the terminal buffer.
	go func() { _, _ = io.Copy(ptmx, os.Stdin) }()
	_, _ = io.Copy(termio, ptmx)

	// Wait for the command to finish.
	err = c.Wait()
	if err != nil {
		log.Printf("error waiting for command: %s\r\n", err)
	}

	d.CloseAll()
	restoreTerm()
	os.Exit(0)
}

func mainHandler(w http.ResponseWriter, r *http.Request) {
	sid, sd, ok := sc.Get(r)
	if !ok {
		sid, sd = sc.Create()
	}

	// renew session
	sc.Save(w, sid, sd)

	http.FileServer(assets.FS).ServeHTTP(w, r)
}

func wsHandler(w http.ResponseWriter, r *http.Request) {
	sid, sd, ok := sc.Get(r)
	if !ok {
		sid, sd = sc.Create()
	}

	// renew session
	sc.Save(w, sid, sd)

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Println(err)

		return
	}

	cl := client.New(c)
	cl.SessionID = sid
	cl.IP = r.RemoteAddr

	motd := config.CFG.MOTD
	if motd == "" {
		motd = "\033[1;36mpadterm\033[0m " + GitTag +
			"\r\nWelcome to " + d.Title +
			", please wait for the command to start...\r\n"
	}

	_ = cl.DirectSend(constants.FRAME, []byte(motd))

	d.AttachClient(cl)
}

func serveHTTP() {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", wsHandler)
	mux.HandleFunc("/", mainHandler)

	s := &http.Server{
		Handler:        mux,
		Addr:           config.CFG.Listen,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("Listening on port %v\n", config.CFG.Listen)
	log.Fatal(s.ListenAndServe())
}

func apiHandler(w http.ResponseWriter, r *http.Request) {
	_, err := prelude(w, r, []string{http.MethodGet}, true)
	if err != nil {
		return
	}

	parameters := getParameters("/api/action/", r)

	if len(parameters) < 1 {
		log.Printf("invalid path")
		errorBadRequest(w)
		return
	}

	cmd := parameters[0]
	switch cmd {
	case "enable-ws-stream":
		// curl -X GET http://localhost:2201/api/action/enable-ws-stream

		d.SetStreaming(true)

		d.Broadcast(constants.RESIZE,
			[]byte(fmt.Sprintf("%d:%d", sizeHeight, sizeWidth)))

		refreshMutex.Lock()
		d.Screen.Virtual().Touch()
		refreshMutex.Unlock()
		refresh()
	case "disable-ws-stream":
		// curl -X GET http://localhost:2201/api/action/disable-ws-stream

		d.SetStreaming(false)
	case "scroll-up":
		// curl -X GET http://localhost:2201/api/action/scroll-up

		scrollBy(d.Screen.Rows() / 2)
	case "scroll-down":
		// curl -X GET http://localhost:2201/api/action/scroll-down

		scrollBy(-d.Screen.Rows() / 2)
	case "scroll-reset":
		// curl -X GET http://localhost:2201/api/action/scroll-reset

		scrollBy(-scrollOffset)
	case "get-version":
		// curl -X GET http://localhost:2201/api/action/get-version

		_, _ = w.Write([]byte(GitTag))
	default:
		errorBadRequest(w)
		return
	}
	_, _ = w.Write([]byte("{status: \"ok\"}\n"))
}

func serveAPI() {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/action/", apiHandler)

	s := &http.Server{
		Handler:        mux,
		Addr:           config.CFG.APIListen,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("Listening API on port %v\n", config.CFG.APIListen)
	log.Fatal(s.ListenAndServe())
}

func runInitLua() {
	initLua := filepath.Join(config.CFG.Path, config.CFG.InitFile)

	if _, err := os.Stat(initLua); os.IsNotExist(err) {
		content := "-- padterm init file\n" +
			"-- print(\"config path: \" .. ConfigPath())\n" +
			"-- SetMOTD(\"welcome\")\n" +
			"-- SetPadRows(2000)\n"
		err = os.WriteFile(initLua, []byte(content), constants.DefaultFileMode)
		if err != nil {
			log.Printf("error creating init file: %s\n", err)
			return
		}
	}

	if err := luaengine.Startup(initLua); err != nil {
		log.Printf("error running init file: %s\n", err)
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile | log.Lmicroseconds)
	logFile, _ := os.Create("padterm.log")
	log.SetOutput(logFile)

	log.Printf("padterm version %s\n", GitTag)
	log.Printf("pid: %d\r\n", os.Getpid())

	err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %s\n", err)
	}

	runInitLua()

	const cookieName = "padterm"
	sc = session.New(cookieName)

	sizeWidth, sizeHeight, err = term.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		sizeWidth, sizeHeight = 80, 24
	}

	d, err = display.New(sizeHeight, sizeWidth, os.Stdout)
	if err != nil {
		log.Fatalf("error creating display: %s\n", err)
	}

	padRows := config.CFG.PadRows
	if padRows < sizeHeight {
		padRows = sizeHeight
	}
	scrollPad, err = d.Screen.NewPad(padRows, sizeWidth)
	if err != nil {
		log.Fatalf("error creating scrollback pad: %s\n", err)
	}
	scrollPad.SetScroll(true)

	vt = vterm.New(scrollPad)

	if config.CFG.Record != "" {
		rec := playback.New(config.CFG.Record)
		err = rec.OpenToAppend()
		if err != nil {
			log.Fatalf("error opening record file: %s\n", err)
		}
		d.Rec = rec
	}

	go runCmd()
	go serveAPI()

	runtime.Gosched()

	serveHTTP()
}
