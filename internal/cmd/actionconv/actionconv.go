// Package actionconv parses converter flags and runs the recording
// conversion loop: raw input events in, policy actions out.
package actionconv

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/elefant-ai/actionspace/internal/action"
	"github.com/elefant-ai/actionspace/internal/annotation"
	"github.com/elefant-ai/actionspace/internal/core/batch"
	"github.com/elefant-ai/actionspace/internal/core/camera"
	entrypoint "github.com/elefant-ai/actionspace/internal/platform/cmd"
)

// Config holds converter configuration.
type Config struct {
	Input         string  `env:"CONVERT_INPUT" envDefault:"-"`
	Output        string  `env:"CONVERT_OUTPUT" envDefault:"-"`
	Frames        bool    `env:"CONVERT_FRAMES"`
	DropNull      bool    `env:"CONVERT_DROP_NULL"`
	Summary       bool    `env:"CONVERT_SUMMARY"`
	Sensitivity   float64 `env:"CONVERT_SENSITIVITY" envDefault:"0.15"`
	CameraMaxVal  int     `env:"CONVERT_CAMERA_MAXVAL" envDefault:"10"`
	CameraBinSize int     `env:"CONVERT_CAMERA_BINSIZE" envDefault:"2"`
	CameraScheme  string  `env:"CONVERT_CAMERA_SCHEME" envDefault:"linear"`
	CameraMu      float64 `env:"CONVERT_CAMERA_MU" envDefault:"5"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Input, "in", cfg.Input, "Input recording path (JSON Lines, - for stdin)")
	fs.StringVar(&cfg.Output, "out", cfg.Output, "Output path (JSON Lines, - for stdout)")
	fs.BoolVar(&cfg.Frames, "frames", cfg.Frames, "Input lines are frame events wrapping the raw input")
	fs.BoolVar(&cfg.DropNull, "drop-null", cfg.DropNull, "Drop null actions from the output")
	fs.BoolVar(&cfg.Summary, "summary", cfg.Summary, "Log a merged-batch summary after converting (buffers the converted stream)")
	fs.Float64Var(&cfg.Sensitivity, "sensitivity", cfg.Sensitivity, "Camera degrees per mouse count")
	fs.IntVar(&cfg.CameraMaxVal, "camera-maxval", cfg.CameraMaxVal, "Camera quantizer bound in degrees")
	fs.IntVar(&cfg.CameraBinSize, "camera-binsize", cfg.CameraBinSize, "Camera quantizer bin width in degrees")
	fs.StringVar(&cfg.CameraScheme, "camera-scheme", cfg.CameraScheme, "Camera quantizer scheme (linear or mu_law)")
	fs.Float64Var(&cfg.CameraMu, "camera-mu", cfg.CameraMu, "Mu-law compression parameter")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// PolicyRecord is one converted output line: the frame's position in the
// recording plus the policy form of its action. Index is the input line
// ordinal for bare event streams; TimeMS is zero when the input carried
// no timing.
type PolicyRecord struct {
	Index      int     `json:"index"`
	TimeMS     float64 `json:"time_ms"`
	Buttons    []int   `json:"buttons"`
	Camera     [2]int  `json:"camera"`
	NullAction bool    `json:"null_action"`
}

// Run converts a recording into policy actions.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceConvert, func(ctx context.Context) error {
		pipeline, err := newPipeline(cfg)
		if err != nil {
			return err
		}

		in, closeIn, err := openInput(cfg.Input)
		if err != nil {
			return err
		}
		defer closeIn()

		out, closeOut, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}

		err = convert(ctx, cfg, pipeline, in, out)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		return err
	})
}

func newPipeline(cfg Config) (*action.Pipeline, error) {
	quant, err := camera.New(camera.Config{
		MaxVal:  cfg.CameraMaxVal,
		BinSize: cfg.CameraBinSize,
		Scheme:  camera.Scheme(cfg.CameraScheme),
		Mu:      cfg.CameraMu,
	})
	if err != nil {
		return nil, err
	}

	vocab := action.DefaultVocabulary()
	bindings := action.DefaultBindings()
	bindings.CameraSensitivity = cfg.Sensitivity

	decoder, err := action.NewDecoder(vocab, bindings)
	if err != nil {
		return nil, err
	}
	transformer, err := action.NewTransformer(vocab, quant)
	if err != nil {
		return nil, err
	}
	return action.NewPipeline(decoder, transformer, nil)
}

func openInput(path string) (io.Reader, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, f.Close, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		w := bufio.NewWriter(os.Stdout)
		return w, w.Flush, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	w := bufio.NewWriter(f)
	flush := func() error {
		if err := w.Flush(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return w, flush, nil
}

// frameSource yields frame events from either stream shape.
type frameSource interface {
	Next() (annotation.FrameEvent, error)
}

// eventSource adapts a bare event stream, synthesizing the line ordinal
// as the frame index.
type eventSource struct {
	r     *annotation.Reader
	index int
}

func (s *eventSource) Next() (annotation.FrameEvent, error) {
	event, err := s.r.Next()
	if err != nil {
		return annotation.FrameEvent{}, err
	}
	frame := annotation.FrameEvent{Index: s.index, Action: event}
	s.index++
	return frame, nil
}

func convert(ctx context.Context, cfg Config, pipeline *action.Pipeline, in io.Reader, out io.Writer) error {
	tracer := otel.Tracer("github.com/elefant-ai/actionspace/internal/cmd/actionconv")
	ctx, span := tracer.Start(ctx, "actionconv.convert")
	defer span.End()

	var source frameSource
	if cfg.Frames {
		source = annotation.NewFrameReader(in)
	} else {
		source = &eventSource{r: annotation.NewReader(in)}
	}

	enc := json.NewEncoder(out)
	var nodes []*batch.Node
	var converted, nulls, dropped int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		policy, isNull := pipeline.EventToPolicy(frame.Action)
		if isNull {
			nulls++
			if cfg.DropNull {
				dropped++
				continue
			}
		}

		record := PolicyRecord{
			Index:      frame.Index,
			TimeMS:     frame.TimeMS,
			Buttons:    policy.Buttons,
			Camera:     [2]int{policy.Camera.Pitch, policy.Camera.Yaw},
			NullAction: isNull,
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("encoding policy record: %w", err)
		}
		converted++
		if cfg.Summary {
			nodes = append(nodes, policy.Batch().Node())
		}
	}

	span.SetAttributes(
		attribute.Int("actionconv.converted", converted),
		attribute.Int("actionconv.null_actions", nulls),
		attribute.Int("actionconv.dropped", dropped),
	)
	log.Printf("converted records=%d null=%d dropped=%d", converted, nulls, dropped)

	if cfg.Summary && len(nodes) > 0 {
		merged, err := batch.Batch(nodes)
		if err != nil {
			return err
		}
		buttonsT := merged.Field(0).Node.Int64()
		cameraT := merged.Field(1).Node.Int64()
		log.Printf("batch summary buttons=%v camera=%v", buttonsT.Shp, cameraT.Shp)
	}
	return nil
}
