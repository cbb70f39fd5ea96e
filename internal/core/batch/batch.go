package batch

import (
	"fmt"
	"strconv"

	"github.com/emer/etable/etensor"

	"github.com/elefant-ai/actionspace/internal/errors"
)

// Options tunes batching behavior.
type Options struct {
	// CheckShapes compares every leaf's non-batch dimensions against the
	// first record before concatenating and fails with the offending path
	// on drift. Costs one pass over all records per leaf; without it only
	// dimension counts and total element counts are enforced, so
	// compensating drifts (a 2x3 leaf meeting a 3x2 one) go undetected.
	CheckShapes bool
}

// Batch concatenates records into one record of the same structure whose
// tensor leaves are joined along their leading axis.
//
// All records must share one structure: the same kinds at every position,
// the same keys in maps, the same lengths of lists and tuples, the same
// field names of records. Leaves at one position must share dtype and
// dimension count; their leading batch dimensions may differ and are
// summed in the result.
//
// # Determinism
//
// Map entries are descended in sorted key order, so error reporting and
// the result are independent of map iteration order.
//
// # Errors
//
//   - At least one record is required, otherwise a CodeBatchNoRecords
//     error is returned.
//   - Structural disagreements produce a CodeBatchStructureMismatch error
//     with the path and record index in the metadata.
//   - Leaf dimension disagreements produce a CodeBatchLeafShapeMismatch
//     error with the path and record index in the metadata.
func Batch(records []*Node) (*Node, error) {
	return BatchWithOptions(records, Options{})
}

// BatchWithOptions is Batch with explicit Options.
func BatchWithOptions(records []*Node, opts Options) (*Node, error) {
	if len(records) == 0 {
		return nil, errors.New(errors.CodeBatchNoRecords, "batching requires at least one record")
	}
	return batchNodes(records, "$", opts)
}

func batchNodes(records []*Node, path string, opts Options) (*Node, error) {
	first := records[0]
	for i, r := range records[1:] {
		if r.kind != first.kind {
			return nil, errors.New(errors.CodeBatchStructureMismatch, "records disagree on node kind").
				WithMeta("path", path).
				WithMeta("record", strconv.Itoa(i+1)).
				WithMeta("expected", first.kind.String()).
				WithMeta("actual", r.kind.String())
		}
	}

	switch first.kind {
	case KindNil:
		return Nil(), nil
	case KindMap:
		return batchMaps(records, path, opts)
	case KindList, KindTuple:
		return batchSeqs(records, path, opts)
	case KindRecord:
		return batchRecords(records, path, opts)
	case KindTensor:
		return batchTensors(records, path, opts)
	}

	// This should be unreachable:
	panic(fmt.Sprintf("unhandled node kind %v", first.kind))
}

func batchMaps(records []*Node, path string, opts Options) (*Node, error) {
	first := records[0]
	keys := first.Keys()
	for i, r := range records[1:] {
		if len(r.entries) != len(first.entries) {
			return nil, errors.New(errors.CodeBatchStructureMismatch, "records disagree on map size").
				WithMeta("path", path).
				WithMeta("record", strconv.Itoa(i+1)).
				WithMeta("expected", strconv.Itoa(len(first.entries))).
				WithMeta("actual", strconv.Itoa(len(r.entries)))
		}
	}

	entries := make(map[string]*Node, len(keys))
	for _, k := range keys {
		children := make([]*Node, len(records))
		for i, r := range records {
			child, ok := r.Key(k)
			if !ok {
				return nil, errors.New(errors.CodeBatchStructureMismatch, "record is missing a map key").
					WithMeta("path", path).
					WithMeta("record", strconv.Itoa(i)).
					WithMeta("key", k)
			}
			children[i] = child
		}
		batched, err := batchNodes(children, path+"."+k, opts)
		if err != nil {
			return nil, err
		}
		entries[k] = batched
	}
	return Map(entries), nil
}

func batchSeqs(records []*Node, path string, opts Options) (*Node, error) {
	first := records[0]
	for i, r := range records[1:] {
		if len(r.seq) != len(first.seq) {
			return nil, errors.New(errors.CodeBatchStructureMismatch, "records disagree on length").
				WithMeta("path", path).
				WithMeta("record", strconv.Itoa(i+1)).
				WithMeta("expected", strconv.Itoa(len(first.seq))).
				WithMeta("actual", strconv.Itoa(len(r.seq)))
		}
	}

	nodes := make([]*Node, len(first.seq))
	for i := range first.seq {
		children := make([]*Node, len(records))
		for j, r := range records {
			children[j] = r.seq[i]
		}
		batched, err := batchNodes(children, fmt.Sprintf("%s[%d]", path, i), opts)
		if err != nil {
			return nil, err
		}
		nodes[i] = batched
	}

	if first.kind == KindTuple {
		return Tuple(nodes...), nil
	}
	return List(nodes...), nil
}

func batchRecords(records []*Node, path string, opts Options) (*Node, error) {
	first := records[0]
	for i, r := range records[1:] {
		if len(r.fields) != len(first.fields) {
			return nil, errors.New(errors.CodeBatchStructureMismatch, "records disagree on field count").
				WithMeta("path", path).
				WithMeta("record", strconv.Itoa(i+1)).
				WithMeta("expected", strconv.Itoa(len(first.fields))).
				WithMeta("actual", strconv.Itoa(len(r.fields)))
		}
		for j, f := range r.fields {
			if f.Name != first.fields[j].Name {
				return nil, errors.New(errors.CodeBatchStructureMismatch, "records disagree on field name").
					WithMeta("path", path).
					WithMeta("record", strconv.Itoa(i+1)).
					WithMeta("expected", first.fields[j].Name).
					WithMeta("actual", f.Name)
			}
		}
	}

	fields := make([]Field, len(first.fields))
	for i, f := range first.fields {
		children := make([]*Node, len(records))
		for j, r := range records {
			children[j] = r.fields[i].Node
		}
		batched, err := batchNodes(children, path+"."+f.Name, opts)
		if err != nil {
			return nil, err
		}
		fields[i] = Field{Name: f.Name, Node: batched}
	}
	return Record(fields...), nil
}

func batchTensors(records []*Node, path string, opts Options) (*Node, error) {
	first := records[0]
	if first.f64 != nil {
		tensors := make([]*etensor.Float64, len(records))
		for i, r := range records {
			if r.f64 == nil {
				return nil, errors.New(errors.CodeBatchStructureMismatch, "records disagree on tensor dtype").
					WithMeta("path", path).
					WithMeta("record", strconv.Itoa(i)).
					WithMeta("expected", "float64").
					WithMeta("actual", "int64")
			}
			tensors[i] = r.f64
		}
		out, err := concatFloat64(tensors, path, opts)
		if err != nil {
			return nil, err
		}
		return Float64Leaf(out), nil
	}

	tensors := make([]*etensor.Int64, len(records))
	for i, r := range records {
		if r.i64 == nil {
			return nil, errors.New(errors.CodeBatchStructureMismatch, "records disagree on tensor dtype").
				WithMeta("path", path).
				WithMeta("record", strconv.Itoa(i)).
				WithMeta("expected", "int64").
				WithMeta("actual", "float64")
		}
		tensors[i] = r.i64
	}
	out, err := concatInt64(tensors, path, opts)
	if err != nil {
		return nil, err
	}
	return Int64Leaf(out), nil
}

func concatFloat64(tensors []*etensor.Float64, path string, opts Options) (*etensor.Float64, error) {
	dims := make([][]int, len(tensors))
	for i, t := range tensors {
		dims[i] = t.Shp
	}
	rows, cell, err := concatDims(dims, path, opts)
	if err != nil {
		return nil, err
	}

	out := etensor.NewFloat64(append([]int{rows}, cell...), nil, nil)
	offset := 0
	for _, t := range tensors {
		copy(out.Values[offset:], t.Values)
		offset += len(t.Values)
	}
	return out, nil
}

func concatInt64(tensors []*etensor.Int64, path string, opts Options) (*etensor.Int64, error) {
	dims := make([][]int, len(tensors))
	for i, t := range tensors {
		dims[i] = t.Shp
	}
	rows, cell, err := concatDims(dims, path, opts)
	if err != nil {
		return nil, err
	}

	out := etensor.NewInt64(append([]int{rows}, cell...), nil, nil)
	offset := 0
	for _, t := range tensors {
		copy(out.Values[offset:], t.Values)
		offset += len(t.Values)
	}
	return out, nil
}

// concatDims validates the shapes of the tensors at one leaf position and
// returns the summed leading dimension plus the shared cell dimensions.
func concatDims(dims [][]int, path string, opts Options) (rows int, cell []int, err error) {
	first := dims[0]
	if len(first) == 0 {
		return 0, nil, errors.New(errors.CodeBatchLeafShapeMismatch, "tensor leaves must carry a leading batch dimension").
			WithMeta("path", path).
			WithMeta("record", "0")
	}

	cellLen := 1
	for _, d := range first[1:] {
		cellLen *= d
	}

	total := 0
	for i, d := range dims {
		if len(d) != len(first) {
			return 0, nil, errors.New(errors.CodeBatchLeafShapeMismatch, "records disagree on tensor dimension count").
				WithMeta("path", path).
				WithMeta("record", strconv.Itoa(i)).
				WithMeta("expected", strconv.Itoa(len(first))).
				WithMeta("actual", strconv.Itoa(len(d)))
		}
		if opts.CheckShapes {
			for j, dim := range d[1:] {
				if dim != first[j+1] {
					return 0, nil, errors.New(errors.CodeBatchLeafShapeMismatch, "records disagree on tensor cell shape").
						WithMeta("path", path).
						WithMeta("record", strconv.Itoa(i)).
						WithMeta("expected", fmt.Sprint(first[1:])).
						WithMeta("actual", fmt.Sprint(d[1:]))
				}
			}
		}
		rows += d[0]
		n := 1
		for _, dim := range d {
			n *= dim
		}
		total += n
	}

	if total != rows*cellLen {
		return 0, nil, errors.New(errors.CodeBatchLeafShapeMismatch, "tensor cell sizes disagree across records").
			WithMeta("path", path).
			WithMeta("expected", strconv.Itoa(rows*cellLen)).
			WithMeta("actual", strconv.Itoa(total))
	}

	cell = make([]int, len(first)-1)
	copy(cell, first[1:])
	return rows, cell, nil
}
