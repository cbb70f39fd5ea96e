package action

import (
	"reflect"
	"testing"

	"github.com/emer/etable/etensor"

	"github.com/elefant-ai/actionspace/internal/core/batch"
	"github.com/elefant-ai/actionspace/internal/core/camera"
)

func TestNewEnvAction(t *testing.T) {
	got := NewEnvAction(testVocabulary(t))

	want := map[string]int{"forward": 0, "attack": 0, "use": 0}
	if !reflect.DeepEqual(got.Buttons, want) {
		t.Errorf("NewEnvAction() buttons = %v, want %v", got.Buttons, want)
	}
	if got.Camera != (camera.Delta{}) {
		t.Errorf("NewEnvAction() camera = %+v, want zero", got.Camera)
	}
}

func TestPolicyActionBatchLift(t *testing.T) {
	a := PolicyAction{
		Buttons: []int{1, 0, 1},
		Camera:  camera.Bin{Pitch: 5, Yaw: 10},
	}

	b := a.Batch()
	if got := b.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
	if want := []int{1, 3}; !reflect.DeepEqual(b.Buttons.Shp, want) {
		t.Errorf("buttons shape = %v, want %v", b.Buttons.Shp, want)
	}
	if want := []int64{1, 0, 1}; !reflect.DeepEqual(b.Buttons.Values, want) {
		t.Errorf("buttons values = %v, want %v", b.Buttons.Values, want)
	}
	if want := []int64{5, 10}; !reflect.DeepEqual(b.Camera.Values, want) {
		t.Errorf("camera values = %v, want %v", b.Camera.Values, want)
	}
}

func TestBatchLenGuards(t *testing.T) {
	if got := (&PolicyActionBatch{}).Len(); got != 0 {
		t.Errorf("empty policy batch Len() = %d, want 0", got)
	}
	if got := (&EnvActionBatch{}).Len(); got != 0 {
		t.Errorf("empty env batch Len() = %d, want 0", got)
	}
}

// Policy action batches concatenate through the structural batcher via
// their record nodes.
func TestPolicyActionBatchNode(t *testing.T) {
	first := PolicyAction{Buttons: []int{1, 0, 0}, Camera: camera.Bin{Pitch: 5, Yaw: 5}}.Batch()
	second := PolicyAction{Buttons: []int{0, 1, 1}, Camera: camera.Bin{Pitch: 0, Yaw: 10}}.Batch()

	got, err := batch.Batch([]*batch.Node{first.Node(), second.Node()})
	if err != nil {
		t.Fatalf("batch.Batch() error = %v", err)
	}

	if want := []string{"buttons", "camera"}; !reflect.DeepEqual(got.FieldNames(), want) {
		t.Fatalf("field names = %v, want %v", got.FieldNames(), want)
	}
	buttonsT := got.Field(0).Node.Int64()
	if want := []int{2, 3}; !reflect.DeepEqual(buttonsT.Shp, want) {
		t.Errorf("buttons shape = %v, want %v", buttonsT.Shp, want)
	}
	if want := []int64{1, 0, 0, 0, 1, 1}; !reflect.DeepEqual(buttonsT.Values, want) {
		t.Errorf("buttons values = %v, want %v", buttonsT.Values, want)
	}
	cameraT := got.Field(1).Node.Int64()
	if want := []int64{5, 5, 0, 10}; !reflect.DeepEqual(cameraT.Values, want) {
		t.Errorf("camera values = %v, want %v", cameraT.Values, want)
	}
}

// Environment action batches expose a flat map node with the camera
// tensor beside the button tensors.
func TestEnvActionBatchNode(t *testing.T) {
	forward := etensor.NewInt64([]int{1}, nil, nil)
	forward.Values = []int64{1}
	cam := etensor.NewFloat64([]int{1, 2}, nil, nil)
	cam.Values = []float64{0, 13.5}

	node := (&EnvActionBatch{
		Buttons: map[string]*etensor.Int64{"forward": forward},
		Camera:  cam,
	}).Node()

	if want := []string{"camera", "forward"}; !reflect.DeepEqual(node.Keys(), want) {
		t.Fatalf("keys = %v, want %v", node.Keys(), want)
	}

	got, err := batch.Batch([]*batch.Node{node, node})
	if err != nil {
		t.Fatalf("batch.Batch() error = %v", err)
	}
	camNode, ok := got.Key("camera")
	if !ok {
		t.Fatal("batched node missing camera entry")
	}
	if want := []float64{0, 13.5, 0, 13.5}; !reflect.DeepEqual(camNode.Float64().Values, want) {
		t.Errorf("camera values = %v, want %v", camNode.Float64().Values, want)
	}
	forwardNode, ok := got.Key("forward")
	if !ok {
		t.Fatal("batched node missing forward entry")
	}
	if want := []int64{1, 1}; !reflect.DeepEqual(forwardNode.Int64().Values, want) {
		t.Errorf("forward values = %v, want %v", forwardNode.Int64().Values, want)
	}
}
