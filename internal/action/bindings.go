package action

import "github.com/elefant-ai/actionspace/internal/core/buttons"

// Bindings holds the static tables the Decoder reads: which physical key
// or mouse button activates which vocabulary button, which keys are
// expected but deliberately not modeled, and how raw mouse deltas scale
// to camera degrees.
type Bindings struct {
	// Keyboard maps physical key codes to vocabulary button names.
	Keyboard map[string]string
	// IgnoredKeys are key codes skipped without a diagnostic.
	IgnoredKeys map[string]struct{}
	// MouseButtons maps recorded mouse button codes to vocabulary button
	// names.
	MouseButtons map[int]string
	// CameraSensitivity scales raw mouse deltas to camera degrees.
	CameraSensitivity float64
}

// defaultButtons is the canonical 20-entry button order shared with the
// policy model. Changing it invalidates every trained checkpoint.
var defaultButtons = []string{
	"attack",
	"back",
	"forward",
	"jump",
	"left",
	"right",
	"sneak",
	"sprint",
	"use",
	"drop",
	"inventory",
	"hotbar.1",
	"hotbar.2",
	"hotbar.3",
	"hotbar.4",
	"hotbar.5",
	"hotbar.6",
	"hotbar.7",
	"hotbar.8",
	"hotbar.9",
}

// DefaultVocabulary returns the canonical button vocabulary.
func DefaultVocabulary() buttons.Vocabulary {
	vocab, err := buttons.New(defaultButtons)
	if err != nil {
		// This should be unreachable:
		panic(err)
	}
	return vocab
}

// DefaultBindings returns the binding tables for recorded gameplay. Key
// codes follow the W3C UI Events code naming (KeyW, Digit1, ShiftLeft)
// the recorder emits. The sensitivity maps one full mouse swipe across a
// 2400-unit surface to a full turn.
func DefaultBindings() Bindings {
	return Bindings{
		Keyboard: map[string]string{
			"KeyW":        "forward",
			"KeyS":        "back",
			"KeyA":        "left",
			"KeyD":        "right",
			"Space":       "jump",
			"ShiftLeft":   "sneak",
			"ControlLeft": "sprint",
			"KeyE":        "inventory",
			"KeyQ":        "drop",
			"Digit1":      "hotbar.1",
			"Digit2":      "hotbar.2",
			"Digit3":      "hotbar.3",
			"Digit4":      "hotbar.4",
			"Digit5":      "hotbar.5",
			"Digit6":      "hotbar.6",
			"Digit7":      "hotbar.7",
			"Digit8":      "hotbar.8",
			"Digit9":      "hotbar.9",
		},
		// Keys the recorder captures but the action space does not model.
		// Escape stays unmapped rather than becoming inventory so that
		// quitting the game is never decoded as an action.
		IgnoredKeys: map[string]struct{}{
			"Escape":      {},
			"Tab":         {},
			"CapsLock":    {},
			"AltLeft":     {},
			"AltRight":    {},
			"KeyF":        {},
			"F1":          {},
			"F2":          {},
			"F3":          {},
			"F4":          {},
			"F5":          {},
			"PrintScreen": {},
		},
		MouseButtons: map[int]string{
			0: "attack",
			2: "use",
		},
		CameraSensitivity: 360.0 / 2400.0,
	}
}
