package action

import (
	"github.com/emer/etable/etensor"

	"github.com/elefant-ai/actionspace/internal/core/batch"
	"github.com/elefant-ai/actionspace/internal/core/buttons"
	"github.com/elefant-ai/actionspace/internal/core/camera"
)

// EnvAction is the named environment form of an action: button name to
// 0/1 plus a continuous camera delta.
type EnvAction struct {
	Buttons map[string]int
	Camera  camera.Delta
}

// NewEnvAction returns an EnvAction with every vocabulary button present
// and set to 0.
func NewEnvAction(vocab buttons.Vocabulary) EnvAction {
	b := make(map[string]int, vocab.Len())
	for i := 0; i < vocab.Len(); i++ {
		b[vocab.At(i)] = 0
	}
	return EnvAction{Buttons: b}
}

// PolicyAction is the quantized policy form of an action: a button vector
// in vocabulary order plus discretized camera bins.
type PolicyAction struct {
	Buttons []int
	Camera  camera.Bin
}

// Batch lifts the action into a batch of size one.
func (a PolicyAction) Batch() *PolicyActionBatch {
	buttonsT := etensor.NewInt64([]int{1, len(a.Buttons)}, nil, nil)
	for i, v := range a.Buttons {
		buttonsT.Values[i] = int64(v)
	}
	cameraT := etensor.NewInt64([]int{1, 2}, nil, nil)
	cameraT.Values[0] = int64(a.Camera.Pitch)
	cameraT.Values[1] = int64(a.Camera.Yaw)
	return &PolicyActionBatch{Buttons: buttonsT, Camera: cameraT}
}

// PolicyActionBatch is a batch of policy actions: Buttons has shape
// [n, vocabulary size], Camera has shape [n, 2] with pitch before yaw.
type PolicyActionBatch struct {
	Buttons *etensor.Int64
	Camera  *etensor.Int64
}

// Len reports the batch size.
func (b *PolicyActionBatch) Len() int {
	if b.Buttons == nil || b.Buttons.NumDims() == 0 {
		return 0
	}
	return b.Buttons.Dim(0)
}

// Node exposes the batch as a record node for structural batching, with
// the fields "buttons" and "camera".
func (b *PolicyActionBatch) Node() *batch.Node {
	return batch.Record(
		batch.Field{Name: "buttons", Node: batch.Int64Leaf(b.Buttons)},
		batch.Field{Name: "camera", Node: batch.Int64Leaf(b.Camera)},
	)
}

// EnvActionBatch is a batch of environment actions: one [n] tensor per
// button name plus an [n, 2] camera tensor with pitch before yaw.
type EnvActionBatch struct {
	Buttons map[string]*etensor.Int64
	Camera  *etensor.Float64
}

// Len reports the batch size.
func (b *EnvActionBatch) Len() int {
	if b.Camera == nil || b.Camera.NumDims() == 0 {
		return 0
	}
	return b.Camera.Dim(0)
}

// Node exposes the batch as a map node for structural batching. Button
// tensors sit under their button names beside the "camera" entry, so no
// button may be named camera.
func (b *EnvActionBatch) Node() *batch.Node {
	entries := make(map[string]*batch.Node, len(b.Buttons)+1)
	for name, t := range b.Buttons {
		entries[name] = batch.Int64Leaf(t)
	}
	entries["camera"] = batch.Float64Leaf(b.Camera)
	return batch.Map(entries)
}

// JointActionBatch is the output of an external hierarchical mapper:
// joint button and camera index tensors sharing a leading batch axis.
type JointActionBatch struct {
	Buttons *etensor.Int64
	Camera  *etensor.Int64
}

// Node exposes the batch as a record node for structural batching, with
// the fields "buttons" and "camera".
func (b *JointActionBatch) Node() *batch.Node {
	return batch.Record(
		batch.Field{Name: "buttons", Node: batch.Int64Leaf(b.Buttons)},
		batch.Field{Name: "camera", Node: batch.Int64Leaf(b.Camera)},
	)
}
