// Package action converts between the three representations of a control
// action: raw recorded input events, named environment actions, and the
// quantized policy form consumed by a learned control model.
//
// The package is organized around three stateless converters:
//   - Decoder: turns a recorded input event (held keys, mouse state) into
//     an environment action plus a null-action flag.
//   - Transformer: converts environment actions to and from the policy
//     form (fixed-order button vector plus camera bins), scalar and
//     batched.
//   - Pipeline: chains Decoder, Transformer, and an external JointMapper
//     into a single event-to-policy conversion.
//
// All converters are immutable after construction and safe for
// unsynchronized concurrent use.
package action
