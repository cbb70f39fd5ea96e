package action

import (
	"fmt"
	"log"
	"strconv"

	"github.com/emer/etable/etensor"

	"github.com/elefant-ai/actionspace/internal/core/buttons"
	"github.com/elefant-ai/actionspace/internal/core/camera"
	"github.com/elefant-ai/actionspace/internal/errors"
)

// Transformer converts actions between the environment form and the
// policy form, scalar or batched. The scalar and batched paths agree
// element for element.
type Transformer struct {
	vocab buttons.Vocabulary
	quant camera.Quantizer
}

// NewTransformer returns a Transformer over the given vocabulary and
// quantizer.
//
// # Errors
//
//   - The vocabulary must be non-empty, otherwise a
//     CodeTransformMissingVocabulary error is returned.
//   - The quantizer must come from camera.New, otherwise a
//     CodeTransformMissingQuantizer error is returned.
func NewTransformer(vocab buttons.Vocabulary, quant camera.Quantizer) (*Transformer, error) {
	if vocab.Len() == 0 {
		return nil, errors.New(errors.CodeTransformMissingVocabulary, "transformer requires a constructed vocabulary")
	}
	if quant.Config().MaxVal == 0 {
		return nil, errors.New(errors.CodeTransformMissingQuantizer, "transformer requires a constructed quantizer")
	}
	return &Transformer{vocab: vocab, quant: quant}, nil
}

// EnvToPolicy converts an environment action to the policy form. Buttons
// absent from the action map read as 0; names outside the vocabulary are
// logged and dropped.
func (t *Transformer) EnvToPolicy(a EnvAction) PolicyAction {
	t.warnUnknownButtons(a.Buttons)

	vec := make([]int, t.vocab.Len())
	for i := range vec {
		vec[i] = a.Buttons[t.vocab.At(i)]
	}
	return PolicyAction{
		Buttons: vec,
		Camera:  t.quant.Discretize(a.Camera),
	}
}

// PolicyToEnv converts a policy action back to the environment form.
//
// # Errors
//
// The button vector length must equal the vocabulary size, otherwise a
// CodeButtonsLengthMismatch error is returned with the expected and
// actual lengths in the metadata.
func (t *Transformer) PolicyToEnv(a PolicyAction) (EnvAction, error) {
	if len(a.Buttons) != t.vocab.Len() {
		return EnvAction{}, errors.New(errors.CodeButtonsLengthMismatch, "button vector length does not match the vocabulary").
			WithMeta("expected", strconv.Itoa(t.vocab.Len())).
			WithMeta("actual", strconv.Itoa(len(a.Buttons)))
	}

	out := EnvAction{Buttons: make(map[string]int, t.vocab.Len())}
	for i, v := range a.Buttons {
		out.Buttons[t.vocab.At(i)] = v
	}
	out.Camera = t.quant.Undiscretize(a.Camera)
	return out, nil
}

// EnvToPolicyBatch converts a batch of environment actions to the policy
// form. Vocabulary buttons without a tensor in the batch read as all
// zeros; tensors under names outside the vocabulary are logged and
// dropped.
//
// # Errors
//
// The camera tensor must have shape [n, 2] and every button tensor must
// have shape [n], otherwise a CodeActionBatchMismatch error is returned
// naming the offending tensor.
func (t *Transformer) EnvToPolicyBatch(b *EnvActionBatch) (*PolicyActionBatch, error) {
	if b == nil || b.Camera == nil {
		return nil, errors.New(errors.CodeActionBatchMismatch, "env action batch requires a camera tensor")
	}
	if b.Camera.NumDims() != 2 || b.Camera.Dim(1) != 2 {
		return nil, errors.New(errors.CodeActionBatchMismatch, "camera tensor must have shape [n 2]").
			WithMeta("actual", fmt.Sprint(b.Camera.Shp))
	}
	t.warnUnknownButtonTensors(b.Buttons)

	n := b.Camera.Dim(0)
	k := t.vocab.Len()

	buttonsT := etensor.NewInt64([]int{n, k}, nil, nil)
	for i := 0; i < k; i++ {
		name := t.vocab.At(i)
		col, ok := b.Buttons[name]
		if !ok {
			continue
		}
		if col.NumDims() != 1 || col.Dim(0) != n {
			return nil, errors.New(errors.CodeActionBatchMismatch, "button tensor must have shape [n]").
				WithMeta("button", name).
				WithMeta("expected", strconv.Itoa(n)).
				WithMeta("actual", fmt.Sprint(col.Shp))
		}
		for r := 0; r < n; r++ {
			buttonsT.Values[r*k+i] = col.Values[r]
		}
	}

	cameraT := etensor.NewInt64([]int{n, 2}, nil, nil)
	for r := 0; r < n; r++ {
		bin := t.quant.Discretize(camera.Delta{
			Pitch: b.Camera.Values[r*2],
			Yaw:   b.Camera.Values[r*2+1],
		})
		cameraT.Values[r*2] = int64(bin.Pitch)
		cameraT.Values[r*2+1] = int64(bin.Yaw)
	}

	return &PolicyActionBatch{Buttons: buttonsT, Camera: cameraT}, nil
}

// PolicyToEnvBatch converts a batch of policy actions back to the
// environment form.
//
// # Errors
//
//   - The button tensor's trailing dimension must equal the vocabulary
//     size, otherwise a CodeButtonsLengthMismatch error is returned.
//   - The tensors must have shapes [n, vocabulary size] and [n, 2] with
//     matching n, otherwise a CodeActionBatchMismatch error is returned.
func (t *Transformer) PolicyToEnvBatch(b *PolicyActionBatch) (*EnvActionBatch, error) {
	if b == nil || b.Buttons == nil || b.Camera == nil {
		return nil, errors.New(errors.CodeActionBatchMismatch, "policy action batch requires button and camera tensors")
	}
	if b.Buttons.NumDims() != 2 {
		return nil, errors.New(errors.CodeActionBatchMismatch, "button tensor must have shape [n k]").
			WithMeta("actual", fmt.Sprint(b.Buttons.Shp))
	}
	k := t.vocab.Len()
	if b.Buttons.Dim(1) != k {
		return nil, errors.New(errors.CodeButtonsLengthMismatch, "button vector length does not match the vocabulary").
			WithMeta("expected", strconv.Itoa(k)).
			WithMeta("actual", strconv.Itoa(b.Buttons.Dim(1)))
	}
	if b.Camera.NumDims() != 2 || b.Camera.Dim(1) != 2 {
		return nil, errors.New(errors.CodeActionBatchMismatch, "camera tensor must have shape [n 2]").
			WithMeta("actual", fmt.Sprint(b.Camera.Shp))
	}
	n := b.Buttons.Dim(0)
	if b.Camera.Dim(0) != n {
		return nil, errors.New(errors.CodeActionBatchMismatch, "button and camera tensors disagree on batch size").
			WithMeta("expected", strconv.Itoa(n)).
			WithMeta("actual", strconv.Itoa(b.Camera.Dim(0)))
	}

	out := &EnvActionBatch{
		Buttons: make(map[string]*etensor.Int64, k),
		Camera:  etensor.NewFloat64([]int{n, 2}, nil, nil),
	}
	for i := 0; i < k; i++ {
		col := etensor.NewInt64([]int{n}, nil, nil)
		for r := 0; r < n; r++ {
			col.Values[r] = b.Buttons.Values[r*k+i]
		}
		out.Buttons[t.vocab.At(i)] = col
	}
	for r := 0; r < n; r++ {
		delta := t.quant.Undiscretize(camera.Bin{
			Pitch: int(b.Camera.Values[r*2]),
			Yaw:   int(b.Camera.Values[r*2+1]),
		})
		out.Camera.Values[r*2] = delta.Pitch
		out.Camera.Values[r*2+1] = delta.Yaw
	}
	return out, nil
}

func (t *Transformer) warnUnknownButtons(m map[string]int) {
	for name := range m {
		if !t.vocab.Contains(name) {
			log.Printf("dropping button outside the vocabulary button=%s", name)
		}
	}
}

func (t *Transformer) warnUnknownButtonTensors(m map[string]*etensor.Int64) {
	for name := range m {
		if !t.vocab.Contains(name) {
			log.Printf("dropping button outside the vocabulary button=%s", name)
		}
	}
}
