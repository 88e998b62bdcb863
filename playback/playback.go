// Package playback records flushed frames to a file and plays them back
// with their original timing. One CSV record per frame:
// command;base64 payload;unix nanos.
package playback

import (
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"padterm/constants"
)

type Playback struct {
	FileName string
	f        *os.File
	writer   *csv.Writer
	reader   *csv.Reader
}

func New(fileName string) *Playback {
	return &Playback{
		FileName: fileName,
	}
}

// Open prepares the file for playback.
func (p *Playback) Open() error {
	var err error
	p.f, err = os.Open(p.FileName)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}

	p.reader = csv.NewReader(p.f)
	p.reader.Comma = ';'
	p.reader.FieldsPerRecord = 3

	return nil
}

// OpenToAppend prepares the file for recording.
func (p *Playback) OpenToAppend() error {
	var err error
	p.f, err = os.OpenFile(p.FileName,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.DefaultFileMode)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}

	p.writer = csv.NewWriter(p.f)
	p.writer.Comma = ';'

	return nil
}

func (p *Playback) Close() error {
	if p.writer != nil {
		p.writer.Flush()
	}
	return p.f.Close()
}

// Rec appends one frame with the current timestamp.
func (p *Playback) Rec(cmd byte, payload []byte) error {
	record := []string{
		strconv.Itoa(int(cmd)),
		base64.StdEncoding.EncodeToString(payload),
		strconv.FormatInt(time.Now().UnixNano(), 10),
	}
	if err := p.writer.Write(record); err != nil {
		return err
	}
	p.writer.Flush()
	return p.writer.Error()
}

// Play replays the recorded frames to a terminal, sleeping between frames
// to reproduce the original timing. RESIZE and CLEAR records become their
// ANSI equivalents.
func (p *Playback) Play(w io.Writer) error {
	lastTime := int64(0)

	for {
		record, err := p.reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("error reading record: %w", err)
		}

		c, err := strconv.ParseInt(record[0], 10, 16)
		if err != nil {
			return fmt.Errorf("error parsing command: %w", err)
		}
		payload, err := base64.StdEncoding.DecodeString(record[1])
		if err != nil {
			return fmt.Errorf("error decoding payload: %w", err)
		}
		ts, err := strconv.ParseInt(record[2], 10, 64)
		if err != nil {
			return fmt.Errorf("error parsing timestamp: %w", err)
		}

		if lastTime != 0 {
			time.Sleep(time.Duration(ts-lastTime) * time.Nanosecond)
		}
		lastTime = ts

		var out []byte
		switch byte(c) {
		case constants.FRAME:
			out = payload
		case constants.RESIZE:
			var rows, cols int
			if _, err := fmt.Sscanf(string(payload), "%d:%d", &rows, &cols); err != nil {
				continue
			}
			out = []byte(fmt.Sprintf("\033[8;%d;%dt", rows, cols))
		case constants.CLEAR:
			out = []byte("\033[2J")
		default:
			continue
		}

		if _, err := w.Write(out); err != nil {
			return fmt.Errorf("error writing to output: %w", err)
		}
	}
}
