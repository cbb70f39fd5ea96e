// Package camera discretizes continuous camera movement into integer bins
// and recovers approximate movement from those bins.
package camera

import (
	"math"
	"strconv"

	"github.com/elefant-ai/actionspace/internal/errors"
)

// Scheme selects how continuous deltas are mapped onto bins.
type Scheme string

const (
	// SchemeLinear splits deltas uniformly into discrete bins.
	SchemeLinear Scheme = "linear"
	// SchemeMuLaw transforms deltas with mu-law encoding
	// (https://en.wikipedia.org/wiki/%CE%9C-law_algorithm) before applying
	// the same linear quantization. Small deltas get finer resolution.
	SchemeMuLaw Scheme = "mu_law"
)

// Delta is a continuous camera movement in degrees. Pitch is the vertical
// component (positive looks down), Yaw the horizontal one.
type Delta struct {
	Pitch float64
	Yaw   float64
}

// Bin is a quantized camera movement. Both components are bin indices in
// [0, BinCount).
type Bin struct {
	Pitch int
	Yaw   int
}

// Config parameterizes a Quantizer.
type Config struct {
	// MaxVal is the largest representable delta magnitude in degrees.
	// Deltas beyond ±MaxVal are clamped.
	MaxVal int
	// BinSize is the width of each bin in degrees. Under SchemeMuLaw it is
	// the average bin width.
	BinSize int
	// Scheme is the quantization scheme. Defaults to SchemeLinear when empty.
	Scheme Scheme
	// Mu defines the curvature of the mu-law encoding. Only consulted under
	// SchemeMuLaw. Higher values of mu produce a sharper transition near
	// zero. Reference values for choosing Mu given a constant MaxVal and a
	// desired precision around zero:
	//
	//	MaxVal = 10 | max precision = 0.5  | Mu ≈ 2.93826
	//	MaxVal = 10 | max precision = 0.4  | Mu ≈ 4.80939
	//	MaxVal = 10 | max precision = 0.25 | Mu ≈ 11.4887
	//	MaxVal = 20 | max precision = 0.5  | Mu ≈ 2.7
	//	MaxVal = 20 | max precision = 0.4  | Mu ≈ 4.39768
	//	MaxVal = 20 | max precision = 0.25 | Mu ≈ 10.3194
	//	MaxVal = 40 | max precision = 0.5  | Mu ≈ 2.60780
	//	MaxVal = 40 | max precision = 0.4  | Mu ≈ 4.21554
	//	MaxVal = 40 | max precision = 0.25 | Mu ≈ 9.81152
	Mu float64
}

// DefaultConfig returns the quantizer configuration used for recorded
// gameplay: ±10 degrees in bins of 2, linear scheme.
func DefaultConfig() Config {
	return Config{
		MaxVal:  10,
		BinSize: 2,
		Scheme:  SchemeLinear,
		Mu:      5,
	}
}

// Quantizer discretizes and undiscretizes a continuous camera delta with
// pitch and yaw components.
//
// # Determinism
//
// Both directions are pure functions of the configuration. Discretize
// clamps to ±MaxVal, applies the scheme's compression, and rounds to the
// nearest bin with ties away from zero. Undiscretize applies the exact
// inverse order. Round-tripping a delta through Discretize and back loses
// at most the quantization error; round-tripping a bin is exact.
type Quantizer struct {
	cfg Config
}

// New validates the configuration and returns a Quantizer.
//
// # Errors
//
//   - MaxVal must be positive, otherwise a CodeCameraInvalidMaxVal error
//     is returned.
//   - BinSize must be positive and evenly divide 2·MaxVal, otherwise a
//     CodeCameraInvalidBinSize error is returned.
//   - Scheme must be SchemeLinear, SchemeMuLaw, or empty (meaning linear),
//     otherwise a CodeCameraInvalidScheme error is returned.
//   - Mu must be positive under SchemeMuLaw, otherwise a CodeCameraInvalidMu
//     error is returned.
func New(cfg Config) (Quantizer, error) {
	if cfg.MaxVal <= 0 {
		return Quantizer{}, errors.New(errors.CodeCameraInvalidMaxVal, "max value must be positive").
			WithMeta("maxval", strconv.Itoa(cfg.MaxVal))
	}
	if cfg.BinSize <= 0 || (2*cfg.MaxVal)%cfg.BinSize != 0 {
		return Quantizer{}, errors.New(errors.CodeCameraInvalidBinSize, "bin size must be positive and divide the delta range").
			WithMeta("maxval", strconv.Itoa(cfg.MaxVal)).
			WithMeta("binsize", strconv.Itoa(cfg.BinSize))
	}
	switch cfg.Scheme {
	case "":
		cfg.Scheme = SchemeLinear
	case SchemeLinear:
	case SchemeMuLaw:
		if cfg.Mu <= 0 {
			return Quantizer{}, errors.New(errors.CodeCameraInvalidMu, "mu must be positive under mu-law quantization")
		}
	default:
		return Quantizer{}, errors.New(errors.CodeCameraInvalidScheme, "unknown quantization scheme").
			WithMeta("scheme", string(cfg.Scheme))
	}
	return Quantizer{cfg: cfg}, nil
}

// Config returns the validated configuration.
func (q Quantizer) Config() Config {
	return q.cfg
}

// BinCount reports the number of distinct bins per component,
// 2·MaxVal/BinSize + 1.
func (q Quantizer) BinCount() int {
	return 2*q.cfg.MaxVal/q.cfg.BinSize + 1
}

// ZeroBin reports the bin index a zero delta maps to, MaxVal/BinSize.
func (q Quantizer) ZeroBin() int {
	return q.cfg.MaxVal / q.cfg.BinSize
}

// Discretize maps a continuous delta to bin indices.
func (q Quantizer) Discretize(d Delta) Bin {
	return Bin{
		Pitch: q.discretize(d.Pitch),
		Yaw:   q.discretize(d.Yaw),
	}
}

// Undiscretize maps bin indices back to the continuous delta at the bin
// center.
func (q Quantizer) Undiscretize(b Bin) Delta {
	return Delta{
		Pitch: q.undiscretize(b.Pitch),
		Yaw:   q.undiscretize(b.Yaw),
	}
}

func (q Quantizer) discretize(x float64) int {
	maxval := float64(q.cfg.MaxVal)
	x = math.Min(math.Max(x, -maxval), maxval)

	if q.cfg.Scheme == SchemeMuLaw {
		x /= maxval
		x = sign(x) * math.Log1p(q.cfg.Mu*math.Abs(x)) / math.Log1p(q.cfg.Mu)
		x *= maxval
	}

	return int(math.Round((x + maxval) / float64(q.cfg.BinSize)))
}

func (q Quantizer) undiscretize(b int) float64 {
	x := float64(b*q.cfg.BinSize - q.cfg.MaxVal)

	if q.cfg.Scheme == SchemeMuLaw {
		maxval := float64(q.cfg.MaxVal)
		x /= maxval
		x = sign(x) * (1 / q.cfg.Mu) * (math.Pow(1+q.cfg.Mu, math.Abs(x)) - 1)
		x *= maxval
	}

	return x
}

// sign matches the three-valued sign the encoding is defined over:
// zero stays zero rather than inheriting a sign bit.
func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
