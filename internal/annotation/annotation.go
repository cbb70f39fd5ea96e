// Package annotation reads recorded gameplay input events.
//
// Recordings are JSON Lines with blank lines skipped. A stream either
// holds bare input events, one per line, or frame events that wrap the
// input with the frame index and capture time.
package annotation

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// KeyboardState lists the keys held during a frame, named by their
// physical key code (KeyW, Space, ShiftLeft, ...).
type KeyboardState struct {
	Keys []string `json:"keys"`
}

// MouseState is the mouse movement and held buttons during a frame.
// DX and DY are raw deltas in pixels; Buttons holds the recorder's
// numeric button identifiers.
type MouseState struct {
	DX      float64 `json:"dx"`
	DY      float64 `json:"dy"`
	Buttons []int   `json:"buttons"`
}

// InputEvent is one recorded frame of raw user input.
type InputEvent struct {
	Keyboard KeyboardState `json:"keyboard"`
	Mouse    MouseState    `json:"mouse"`
}

// FrameEvent is one recorded frame with its position in the recording:
// the ordinal frame index, the capture time in milliseconds since the
// recording started, and the input held during the frame.
type FrameEvent struct {
	Index  int        `json:"index"`
	TimeMS float64    `json:"time_ms"`
	Action InputEvent `json:"action"`
}

// lineScanner walks a JSON Lines stream, skipping blank lines and
// tracking line numbers for error reporting.
type lineScanner struct {
	scanner *bufio.Scanner
	line    int
}

// next decodes the next non-blank line into v. It returns io.EOF once
// the stream is exhausted.
func (s *lineScanner) next(v any) error {
	for s.scanner.Scan() {
		s.line++
		text := strings.TrimSpace(s.scanner.Text())
		if text == "" {
			continue
		}
		if err := json.Unmarshal([]byte(text), v); err != nil {
			return fmt.Errorf("decoding input event on line %d: %w", s.line, err)
		}
		return nil
	}
	if err := s.scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

// Reader decodes input events from a JSON Lines stream.
type Reader struct {
	s lineScanner
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{s: lineScanner{scanner: bufio.NewScanner(r)}}
}

// Next returns the next input event. It skips blank lines and returns
// io.EOF once the stream is exhausted. Malformed lines produce an error
// naming the line number.
func (r *Reader) Next() (InputEvent, error) {
	var event InputEvent
	if err := r.s.next(&event); err != nil {
		return InputEvent{}, err
	}
	return event, nil
}

// FrameReader decodes frame events from a JSON Lines stream.
type FrameReader struct {
	s lineScanner
}

// NewFrameReader returns a FrameReader over r.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{s: lineScanner{scanner: bufio.NewScanner(r)}}
}

// Next returns the next frame event. It skips blank lines and returns
// io.EOF once the stream is exhausted. Malformed lines produce an error
// naming the line number.
func (r *FrameReader) Next() (FrameEvent, error) {
	var frame FrameEvent
	if err := r.s.next(&frame); err != nil {
		return FrameEvent{}, err
	}
	return frame, nil
}

// ReadAll drains r and returns every remaining event.
func ReadAll(r io.Reader) ([]InputEvent, error) {
	reader := NewReader(r)
	var events []InputEvent
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
}
