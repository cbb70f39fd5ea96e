package action

import (
	"log"
	"strconv"

	"github.com/elefant-ai/actionspace/internal/annotation"
	"github.com/elefant-ai/actionspace/internal/core/buttons"
	"github.com/elefant-ai/actionspace/internal/errors"
)

// Camera deltas beyond this magnitude after sensitivity scaling are
// treated as sensor glitches and zeroed, discarding the swing instead of
// clamping it.
const maxCameraDegrees = 180

// Decoder turns recorded input events into environment actions.
type Decoder struct {
	vocab    buttons.Vocabulary
	bindings Bindings
}

// NewDecoder validates the binding tables against the vocabulary and
// returns a Decoder.
//
// # Errors
//
//   - Every button name in the keyboard and mouse tables must be part of
//     the vocabulary, otherwise a CodeBindingsUnknownButton error is
//     returned naming the offending entry.
//   - CameraSensitivity must be positive, otherwise a
//     CodeBindingsInvalidSensitivity error is returned.
func NewDecoder(vocab buttons.Vocabulary, bindings Bindings) (*Decoder, error) {
	if bindings.CameraSensitivity <= 0 {
		return nil, errors.New(errors.CodeBindingsInvalidSensitivity, "camera sensitivity must be positive").
			WithMeta("sensitivity", strconv.FormatFloat(bindings.CameraSensitivity, 'g', -1, 64))
	}
	for key, name := range bindings.Keyboard {
		if !vocab.Contains(name) {
			return nil, errors.New(errors.CodeBindingsUnknownButton, "keyboard table names a button outside the vocabulary").
				WithMeta("key", key).
				WithMeta("button", name)
		}
	}
	for code, name := range bindings.MouseButtons {
		if !vocab.Contains(name) {
			return nil, errors.New(errors.CodeBindingsUnknownButton, "mouse table names a button outside the vocabulary").
				WithMeta("mouse_button", strconv.Itoa(code)).
				WithMeta("button", name)
		}
	}
	return &Decoder{vocab: vocab, bindings: bindings}, nil
}

// Decode converts one recorded input event into an environment action.
// The second result reports whether the event was a null action: no
// mapped key, no mouse movement, no mapped mouse button.
//
// Keys absent from both the keyboard table and the ignored set are
// logged and skipped; decoding never fails. A non-zero mouse delta
// clears the null flag even when the scaled value is then zeroed as a
// glitch, so a glitch-only frame is not a null action.
func (d *Decoder) Decode(event annotation.InputEvent) (EnvAction, bool) {
	out := NewEnvAction(d.vocab)
	isNull := true

	for _, key := range event.Keyboard.Keys {
		if name, ok := d.bindings.Keyboard[key]; ok {
			out.Buttons[name] = 1
			isNull = false
			continue
		}
		if _, ok := d.bindings.IgnoredKeys[key]; ok {
			continue
		}
		log.Printf("skipping unmapped keyboard key key=%s", key)
	}

	if event.Mouse.DY != 0 {
		isNull = false
		out.Camera.Pitch = event.Mouse.DY * d.bindings.CameraSensitivity
	}
	if event.Mouse.DX != 0 {
		isNull = false
		out.Camera.Yaw = event.Mouse.DX * d.bindings.CameraSensitivity
	}
	if out.Camera.Pitch > maxCameraDegrees || out.Camera.Pitch < -maxCameraDegrees {
		out.Camera.Pitch = 0
	}
	if out.Camera.Yaw > maxCameraDegrees || out.Camera.Yaw < -maxCameraDegrees {
		out.Camera.Yaw = 0
	}

	for _, code := range event.Mouse.Buttons {
		if name, ok := d.bindings.MouseButtons[code]; ok {
			out.Buttons[name] = 1
			isNull = false
		}
	}

	return out, isNull
}
