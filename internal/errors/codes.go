// Package errors provides structured error handling for the action codec.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Camera quantizer errors
	CodeCameraInvalidMaxVal  Code = "CAMERA_INVALID_MAXVAL"
	CodeCameraInvalidBinSize Code = "CAMERA_INVALID_BINSIZE"
	CodeCameraInvalidScheme  Code = "CAMERA_INVALID_SCHEME"
	CodeCameraInvalidMu      Code = "CAMERA_INVALID_MU"

	// Button vocabulary errors
	CodeVocabularyEmpty           Code = "VOCABULARY_EMPTY"
	CodeVocabularyEmptyButton     Code = "VOCABULARY_EMPTY_BUTTON"
	CodeVocabularyDuplicateButton Code = "VOCABULARY_DUPLICATE_BUTTON"

	// Binding table errors
	CodeBindingsUnknownButton      Code = "BINDINGS_UNKNOWN_BUTTON"
	CodeBindingsInvalidSensitivity Code = "BINDINGS_INVALID_SENSITIVITY"

	// Action transform errors
	CodeTransformMissingVocabulary Code = "TRANSFORM_MISSING_VOCABULARY"
	CodeTransformMissingQuantizer  Code = "TRANSFORM_MISSING_QUANTIZER"
	CodeButtonsLengthMismatch      Code = "BUTTONS_LENGTH_MISMATCH"
	CodeActionBatchMismatch        Code = "ACTION_BATCH_MISMATCH"

	// Pipeline errors
	CodePipelineMissingDecoder     Code = "PIPELINE_MISSING_DECODER"
	CodePipelineMissingTransformer Code = "PIPELINE_MISSING_TRANSFORMER"
	CodePipelineMissingMapper      Code = "PIPELINE_MISSING_MAPPER"

	// Recursive batching errors
	CodeBatchNoRecords         Code = "BATCH_NO_RECORDS"
	CodeBatchStructureMismatch Code = "BATCH_STRUCTURE_MISMATCH"
	CodeBatchLeafShapeMismatch Code = "BATCH_LEAF_SHAPE_MISMATCH"
	CodeBatchUnsupportedLeaf   Code = "BATCH_UNSUPPORTED_LEAF"
)

// Kind groups codes into the coarse failure classes callers branch on.
type Kind int

const (
	// KindUnknown covers errors that do not map to a known class.
	KindUnknown Kind = iota
	// KindInvalidConfiguration covers construction-time validation failures.
	KindInvalidConfiguration
	// KindShapeMismatch covers length and dimension disagreements between values.
	KindShapeMismatch
	// KindUnsupportedLeafType covers values outside the closed set of batchable types.
	KindUnsupportedLeafType
)

func (k Kind) String() string {
	switch k {
	case KindInvalidConfiguration:
		return "invalid configuration"
	case KindShapeMismatch:
		return "shape mismatch"
	case KindUnsupportedLeafType:
		return "unsupported leaf type"
	default:
		return "unknown"
	}
}

// Kind maps codes to failure classes.
func (c Code) Kind() Kind {
	switch c {
	// InvalidConfiguration - construction-time validation failures, bad call setup
	case CodeCameraInvalidMaxVal,
		CodeCameraInvalidBinSize,
		CodeCameraInvalidScheme,
		CodeCameraInvalidMu,
		CodeVocabularyEmpty,
		CodeVocabularyEmptyButton,
		CodeVocabularyDuplicateButton,
		CodeBindingsUnknownButton,
		CodeBindingsInvalidSensitivity,
		CodeTransformMissingVocabulary,
		CodeTransformMissingQuantizer,
		CodePipelineMissingDecoder,
		CodePipelineMissingTransformer,
		CodePipelineMissingMapper,
		CodeBatchNoRecords:
		return KindInvalidConfiguration

	// ShapeMismatch - values disagree on length or dimensions
	case CodeButtonsLengthMismatch,
		CodeActionBatchMismatch,
		CodeBatchStructureMismatch,
		CodeBatchLeafShapeMismatch:
		return KindShapeMismatch

	// UnsupportedLeafType - value outside the closed batchable set
	case CodeBatchUnsupportedLeaf:
		return KindUnsupportedLeafType

	default:
		return KindUnknown
	}
}
