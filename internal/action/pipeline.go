package action

import (
	"github.com/elefant-ai/actionspace/internal/annotation"
	"github.com/elefant-ai/actionspace/internal/errors"
)

// JointMapper further discretizes a factored policy action batch into the
// model's joint action space. Implementations live outside this module;
// the mapper is consumed as a black box.
type JointMapper interface {
	FromFactored(*PolicyActionBatch) (*JointActionBatch, error)
}

// Pipeline chains the Decoder, the Transformer, and an optional
// JointMapper into single-call conversions from raw input events.
// It owns no state beyond its three collaborators.
type Pipeline struct {
	decoder     *Decoder
	transformer *Transformer
	mapper      JointMapper
}

// NewPipeline returns a Pipeline. The mapper may be nil when joint
// mapping is not needed; EventToJoint then fails.
//
// # Errors
//
// The decoder and transformer are required, otherwise a
// CodePipelineMissingDecoder or CodePipelineMissingTransformer error is
// returned.
func NewPipeline(decoder *Decoder, transformer *Transformer, mapper JointMapper) (*Pipeline, error) {
	if decoder == nil {
		return nil, errors.New(errors.CodePipelineMissingDecoder, "pipeline requires a decoder")
	}
	if transformer == nil {
		return nil, errors.New(errors.CodePipelineMissingTransformer, "pipeline requires a transformer")
	}
	return &Pipeline{decoder: decoder, transformer: transformer, mapper: mapper}, nil
}

// EventToEnv decodes one input event into an environment action plus the
// null-action flag.
func (p *Pipeline) EventToEnv(event annotation.InputEvent) (EnvAction, bool) {
	return p.decoder.Decode(event)
}

// EventToPolicy decodes and transforms one input event into the policy
// form plus the null-action flag.
func (p *Pipeline) EventToPolicy(event annotation.InputEvent) (PolicyAction, bool) {
	env, isNull := p.decoder.Decode(event)
	return p.transformer.EnvToPolicy(env), isNull
}

// EventToJoint decodes, transforms, and maps one input event into the
// joint action space, lifting the policy action into a batch of size one
// for the mapper.
//
// # Errors
//
// Returns a CodePipelineMissingMapper error when the pipeline was built
// without a mapper; mapper failures propagate unchanged.
func (p *Pipeline) EventToJoint(event annotation.InputEvent) (*JointActionBatch, error) {
	if p.mapper == nil {
		return nil, errors.New(errors.CodePipelineMissingMapper, "pipeline was built without a joint mapper")
	}
	policy, _ := p.EventToPolicy(event)
	return p.mapper.FromFactored(policy.Batch())
}
