// Replays a recorded padterm session on the local terminal with its
// original timing.
package main

import (
	"flag"
	"log"
	"os"

	"padterm/playback"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	file := flag.String("file", "", "recording to replay")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	p := playback.New(*file)
	err := p.Open()
	if err != nil {
		log.Fatalf("error opening recording: %s\n", err)
	}
	defer p.Close()

	// reset terminal
	os.Stdout.Write([]byte("\033c"))

	err = p.Play(os.Stdout)
	if err != nil {
		log.Fatalf("error replaying: %s\n", err)
	}
}
