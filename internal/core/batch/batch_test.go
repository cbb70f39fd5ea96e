package batch

import (
	"reflect"
	"testing"

	"github.com/emer/etable/etensor"

	"github.com/elefant-ai/actionspace/internal/errors"
)

// seqFloat64 builds a float64 tensor whose values count up from start.
func seqFloat64(shape []int, start float64) *etensor.Float64 {
	t := etensor.NewFloat64(shape, nil, nil)
	for i := range t.Values {
		t.Values[i] = start + float64(i)
	}
	return t
}

func seqInt64(shape []int, start int64) *etensor.Int64 {
	t := etensor.NewInt64(shape, nil, nil)
	for i := range t.Values {
		t.Values[i] = start + int64(i)
	}
	return t
}

func TestBatchMapOfTensors(t *testing.T) {
	record := func() *Node {
		return Map(map[string]*Node{
			"a": Float64Leaf(seqFloat64([]int{1, 1, 4}, 0)),
			"b": Float64Leaf(seqFloat64([]int{2, 2, 4}, 0)),
		})
	}

	got, err := Batch([]*Node{record(), record()})
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	if got.Kind() != KindMap {
		t.Fatalf("Batch() kind = %v, want %v", got.Kind(), KindMap)
	}
	a, ok := got.Key("a")
	if !ok {
		t.Fatal("Batch() result missing key a")
	}
	if want := []int{2, 1, 4}; !reflect.DeepEqual(a.Float64().Shp, want) {
		t.Errorf("a shape = %v, want %v", a.Float64().Shp, want)
	}
	b, ok := got.Key("b")
	if !ok {
		t.Fatal("Batch() result missing key b")
	}
	if want := []int{4, 2, 4}; !reflect.DeepEqual(b.Float64().Shp, want) {
		t.Errorf("b shape = %v, want %v", b.Float64().Shp, want)
	}
}

func TestBatchNestedStructure(t *testing.T) {
	record := func() *Node {
		a := Float64Leaf(seqFloat64([]int{1, 1, 4}, 0))
		b := Float64Leaf(seqFloat64([]int{2, 2, 4}, 0))
		return Map(map[string]*Node{
			"a": a,
			"b": b,
			"t": Tuple(a, b),
			"n": Nil(),
		})
	}

	got, err := Batch([]*Node{record(), record()})
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	n, _ := got.Key("n")
	if n.Kind() != KindNil {
		t.Errorf("n kind = %v, want %v", n.Kind(), KindNil)
	}
	tup, _ := got.Key("t")
	if tup.Kind() != KindTuple {
		t.Fatalf("t kind = %v, want %v", tup.Kind(), KindTuple)
	}
	if tup.Len() != 2 {
		t.Fatalf("t length = %d, want 2", tup.Len())
	}
	if want := []int{2, 1, 4}; !reflect.DeepEqual(tup.Index(0).Float64().Shp, want) {
		t.Errorf("t[0] shape = %v, want %v", tup.Index(0).Float64().Shp, want)
	}
	if want := []int{4, 2, 4}; !reflect.DeepEqual(tup.Index(1).Float64().Shp, want) {
		t.Errorf("t[1] shape = %v, want %v", tup.Index(1).Float64().Shp, want)
	}
}

func TestBatchConcatenatesAlongLeadingAxis(t *testing.T) {
	first := Float64Leaf(seqFloat64([]int{1, 2}, 1))  // [[1 2]]
	second := Float64Leaf(seqFloat64([]int{2, 2}, 3)) // [[3 4] [5 6]]

	got, err := Batch([]*Node{first, second})
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	out := got.Float64()
	if want := []int{3, 2}; !reflect.DeepEqual(out.Shp, want) {
		t.Fatalf("shape = %v, want %v", out.Shp, want)
	}
	if want := []float64{1, 2, 3, 4, 5, 6}; !reflect.DeepEqual(out.Values, want) {
		t.Errorf("values = %v, want %v", out.Values, want)
	}
}

func TestBatchInt64Leaves(t *testing.T) {
	first := Int64Leaf(seqInt64([]int{1, 3}, 10))
	second := Int64Leaf(seqInt64([]int{1, 3}, 20))

	got, err := Batch([]*Node{first, second})
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	out := got.Int64()
	if want := []int{2, 3}; !reflect.DeepEqual(out.Shp, want) {
		t.Fatalf("shape = %v, want %v", out.Shp, want)
	}
	if want := []int64{10, 11, 12, 20, 21, 22}; !reflect.DeepEqual(out.Values, want) {
		t.Errorf("values = %v, want %v", out.Values, want)
	}
}

func TestBatchRecordFields(t *testing.T) {
	record := func(start int64) *Node {
		return Record(
			Field{Name: "buttons", Node: Int64Leaf(seqInt64([]int{1, 3}, start))},
			Field{Name: "camera", Node: Int64Leaf(seqInt64([]int{1, 2}, start))},
		)
	}

	got, err := Batch([]*Node{record(0), record(100)})
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}

	if want := []string{"buttons", "camera"}; !reflect.DeepEqual(got.FieldNames(), want) {
		t.Fatalf("field names = %v, want %v", got.FieldNames(), want)
	}
	buttons := got.Field(0).Node.Int64()
	if want := []int{2, 3}; !reflect.DeepEqual(buttons.Shp, want) {
		t.Errorf("buttons shape = %v, want %v", buttons.Shp, want)
	}
	if want := []int64{0, 1, 2, 100, 101, 102}; !reflect.DeepEqual(buttons.Values, want) {
		t.Errorf("buttons values = %v, want %v", buttons.Values, want)
	}
}

func TestBatchSingleRecord(t *testing.T) {
	got, err := Batch([]*Node{Float64Leaf(seqFloat64([]int{2, 3}, 0))})
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	if want := []int{2, 3}; !reflect.DeepEqual(got.Float64().Shp, want) {
		t.Errorf("shape = %v, want %v", got.Float64().Shp, want)
	}
}

func TestBatchErrors(t *testing.T) {
	tests := []struct {
		name     string
		records  []*Node
		opts     Options
		wantErr  errors.Code
		wantPath string
	}{
		{
			name:    "no records",
			records: nil,
			wantErr: errors.CodeBatchNoRecords,
		},
		{
			name: "kind mismatch",
			records: []*Node{
				Float64Leaf(seqFloat64([]int{1, 2}, 0)),
				Nil(),
			},
			wantErr:  errors.CodeBatchStructureMismatch,
			wantPath: "$",
		},
		{
			name: "map key missing",
			records: []*Node{
				Map(map[string]*Node{"a": Nil(), "b": Nil()}),
				Map(map[string]*Node{"a": Nil(), "c": Nil()}),
			},
			wantErr:  errors.CodeBatchStructureMismatch,
			wantPath: "$",
		},
		{
			name: "list length mismatch",
			records: []*Node{
				List(Nil(), Nil()),
				List(Nil()),
			},
			wantErr:  errors.CodeBatchStructureMismatch,
			wantPath: "$",
		},
		{
			name: "field name mismatch",
			records: []*Node{
				Record(Field{Name: "buttons", Node: Nil()}),
				Record(Field{Name: "camera", Node: Nil()}),
			},
			wantErr:  errors.CodeBatchStructureMismatch,
			wantPath: "$",
		},
		{
			name: "dtype mismatch",
			records: []*Node{
				Float64Leaf(seqFloat64([]int{1, 2}, 0)),
				Int64Leaf(seqInt64([]int{1, 2}, 0)),
			},
			wantErr:  errors.CodeBatchStructureMismatch,
			wantPath: "$",
		},
		{
			name: "dimension count mismatch",
			records: []*Node{
				Map(map[string]*Node{"a": Float64Leaf(seqFloat64([]int{1, 2}, 0))}),
				Map(map[string]*Node{"a": Float64Leaf(seqFloat64([]int{1, 2, 1}, 0))}),
			},
			wantErr:  errors.CodeBatchLeafShapeMismatch,
			wantPath: "$.a",
		},
		{
			name: "cell size mismatch",
			records: []*Node{
				Float64Leaf(seqFloat64([]int{1, 3}, 0)),
				Float64Leaf(seqFloat64([]int{1, 5}, 0)),
			},
			wantErr:  errors.CodeBatchLeafShapeMismatch,
			wantPath: "$",
		},
		{
			name: "scalar leaf",
			records: []*Node{
				Float64Leaf(etensor.NewFloat64(nil, nil, nil)),
			},
			wantErr:  errors.CodeBatchLeafShapeMismatch,
			wantPath: "$",
		},
		{
			name: "cell shape drift with check",
			records: []*Node{
				Tuple(Float64Leaf(seqFloat64([]int{1, 2, 3}, 0))),
				Tuple(Float64Leaf(seqFloat64([]int{1, 3, 2}, 0))),
			},
			opts:     Options{CheckShapes: true},
			wantErr:  errors.CodeBatchLeafShapeMismatch,
			wantPath: "$[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BatchWithOptions(tt.records, tt.opts)
			if err == nil {
				t.Fatal("BatchWithOptions() error = nil, want error")
			}
			if got := errors.GetCode(err); got != tt.wantErr {
				t.Errorf("error code = %v, want %v", got, tt.wantErr)
			}
			if tt.wantPath != "" {
				if got := errors.GetMetadata(err)["path"]; got != tt.wantPath {
					t.Errorf("error path = %q, want %q", got, tt.wantPath)
				}
			}
		})
	}
}

// Without CheckShapes, cell drift that preserves the total element count
// is accepted and resolved against the first record's cell shape.
func TestBatchCompensatingDriftUnchecked(t *testing.T) {
	records := []*Node{
		Float64Leaf(seqFloat64([]int{1, 2, 3}, 0)),
		Float64Leaf(seqFloat64([]int{1, 3, 2}, 0)),
	}

	got, err := Batch(records)
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	if want := []int{2, 2, 3}; !reflect.DeepEqual(got.Float64().Shp, want) {
		t.Errorf("shape = %v, want %v", got.Float64().Shp, want)
	}
}

func TestFromValue(t *testing.T) {
	f := seqFloat64([]int{1, 2}, 0)
	i := seqInt64([]int{1, 2}, 0)

	node, err := FromValue(map[string]any{
		"f":    f,
		"i":    i,
		"none": nil,
		"list": []any{f, nil},
	})
	if err != nil {
		t.Fatalf("FromValue() error = %v", err)
	}

	if node.Kind() != KindMap {
		t.Fatalf("kind = %v, want %v", node.Kind(), KindMap)
	}
	if want := []string{"f", "i", "list", "none"}; !reflect.DeepEqual(node.Keys(), want) {
		t.Fatalf("keys = %v, want %v", node.Keys(), want)
	}
	fNode, _ := node.Key("f")
	if fNode.Float64() != f {
		t.Error("f leaf does not hold the original tensor")
	}
	iNode, _ := node.Key("i")
	if iNode.Int64() != i {
		t.Error("i leaf does not hold the original tensor")
	}
	noneNode, _ := node.Key("none")
	if noneNode.Kind() != KindNil {
		t.Errorf("none kind = %v, want %v", noneNode.Kind(), KindNil)
	}
	listNode, _ := node.Key("list")
	if listNode.Kind() != KindList || listNode.Len() != 2 {
		t.Errorf("list kind = %v len = %d, want %v len 2", listNode.Kind(), listNode.Len(), KindList)
	}
}

func TestFromValueUnsupported(t *testing.T) {
	_, err := FromValue(map[string]any{"bad": "a string"})
	if err == nil {
		t.Fatal("FromValue() error = nil, want error")
	}
	if !errors.IsCode(err, errors.CodeBatchUnsupportedLeaf) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.CodeBatchUnsupportedLeaf)
	}
	if !errors.IsKind(err, errors.KindUnsupportedLeafType) {
		t.Errorf("error kind mismatch: %v", err)
	}
}

func TestFromValueNodePassthrough(t *testing.T) {
	orig := Tuple(Nil())
	node, err := FromValue(orig)
	if err != nil {
		t.Fatalf("FromValue() error = %v", err)
	}
	if node != orig {
		t.Error("FromValue(*Node) did not return the node unchanged")
	}
}
