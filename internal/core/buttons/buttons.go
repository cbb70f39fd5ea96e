// Package buttons defines the ordered button vocabulary shared by every
// action representation.
//
// A vocabulary fixes the set of button names an action may carry and the
// order in which those buttons appear in vectorized forms. The ordering is
// load-bearing: index i in a policy action's button vector always refers to
// the i-th name of the vocabulary it was built against, so two components
// exchanging vectors must be constructed from the same vocabulary.
package buttons

import (
	"strconv"

	"github.com/elefant-ai/actionspace/internal/errors"
)

// Vocabulary is an ordered, duplicate-free set of button names.
//
// The zero value is empty and unusable; construct with New.
type Vocabulary struct {
	names []string
	index map[string]int
}

// New builds a vocabulary from the given names, preserving order.
//
// # Errors
//
//   - At least one name must be provided, otherwise a
//     CodeVocabularyEmpty error is returned.
//   - Names must be non-empty, otherwise a CodeVocabularyEmptyButton
//     error is returned.
//   - Names must be unique, otherwise a CodeVocabularyDuplicateButton
//     error is returned naming the first duplicate.
func New(names []string) (Vocabulary, error) {
	if len(names) == 0 {
		return Vocabulary{}, errors.New(errors.CodeVocabularyEmpty, "vocabulary requires at least one button")
	}

	index := make(map[string]int, len(names))
	ordered := make([]string, len(names))
	for i, name := range names {
		if name == "" {
			return Vocabulary{}, errors.New(errors.CodeVocabularyEmptyButton, "button name must not be empty").
				WithMeta("position", strconv.Itoa(i))
		}
		if _, ok := index[name]; ok {
			return Vocabulary{}, errors.New(errors.CodeVocabularyDuplicateButton, "button names must be unique").
				WithMeta("button", name)
		}
		index[name] = i
		ordered[i] = name
	}

	return Vocabulary{names: ordered, index: index}, nil
}

// Len reports the number of buttons in the vocabulary.
func (v Vocabulary) Len() int {
	return len(v.names)
}

// Index returns the position of name in the vocabulary, or false if the
// name is not part of it.
func (v Vocabulary) Index(name string) (int, bool) {
	i, ok := v.index[name]
	return i, ok
}

// Contains reports whether name is part of the vocabulary.
func (v Vocabulary) Contains(name string) bool {
	_, ok := v.index[name]
	return ok
}

// At returns the name at position i. It panics if i is out of range,
// matching slice indexing semantics.
func (v Vocabulary) At(i int) string {
	return v.names[i]
}

// Names returns the button names in vocabulary order. The returned slice
// is a copy; mutating it does not affect the vocabulary.
func (v Vocabulary) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}
