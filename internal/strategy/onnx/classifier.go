package onnx

import (
	"os"
	"runtime"
	"sync"

	"github.com/rxtech-lab/forest/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

type Config struct {
	// ModelPath is the .onnx file to load.
	ModelPath string
	// LibraryPath is the onnxruntime shared library. Empty picks the platform default.
	LibraryPath string
	InputName   string
	OutputName  string
	// Features is the width of the [1, Features] input tensor.
	Features int
}

// DefaultLibraryPath returns the usual onnxruntime location for the platform.
func DefaultLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "/usr/lib/libonnxruntime.so"
	}
}

func (c Config) withDefaults() Config {
	if c.LibraryPath == "" {
		c.LibraryPath = DefaultLibraryPath()
	}

	if c.InputName == "" {
		c.InputName = "input"
	}

	if c.OutputName == "" {
		c.OutputName = "output"
	}

	return c
}

var initMu sync.Mutex

// initialize sets up the process wide onnxruntime environment once.
func initialize(libraryPath string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}

	ort.SetSharedLibraryPath(libraryPath)

	return ort.InitializeEnvironment()
}

// Classifier runs a binary classifier exported to ONNX with one float32 input
// of shape [1, n] and one float32 output of shape [1, 2]. A session is not
// safe for concurrent use; give each run its own Classifier.
type Classifier struct {
	session  *ort.AdvancedSession
	input    *ort.Tensor[float32]
	output   *ort.Tensor[float32]
	features int
}

func NewClassifier(config Config) (*Classifier, error) {
	config = config.withDefaults()

	if config.Features <= 0 {
		return nil, errors.Newf(errors.ErrCodeModelLoadFailed, "feature count must be positive, got %d", config.Features)
	}

	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeModelLoadFailed, err, "model file %s is not readable", config.ModelPath)
	}

	if err := initialize(config.LibraryPath); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeModelLoadFailed, err, "failed to initialize onnxruntime from %s", config.LibraryPath)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(config.Features)), make([]float32, config.Features))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeModelLoadFailed, "failed to create input tensor", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		input.Destroy()

		return nil, errors.Wrap(errors.ErrCodeModelLoadFailed, "failed to create output tensor", err)
	}

	session, err := ort.NewAdvancedSession(config.ModelPath,
		[]string{config.InputName}, []string{config.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()

		return nil, errors.Wrapf(errors.ErrCodeModelLoadFailed, err, "failed to create session for %s", config.ModelPath)
	}

	return &Classifier{
		session:  session,
		input:    input,
		output:   output,
		features: config.Features,
	}, nil
}

// PredictProba returns [p(short), p(long)] for one feature vector.
func (c *Classifier) PredictProba(features []float32) ([]float32, error) {
	if len(features) != c.features {
		return nil, errors.Newf(errors.ErrCodeModelInferenceFailed, "expected %d features, got %d", c.features, len(features))
	}

	copy(c.input.GetData(), features)

	if err := c.session.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeModelInferenceFailed, "inference failed", err)
	}

	out := c.output.GetData()
	probs := make([]float32, len(out))
	copy(probs, out)

	return probs, nil
}

// Close destroys the session and its tensors.
func (c *Classifier) Close() error {
	var first error

	if c.session != nil {
		first = c.session.Destroy()
		c.session = nil
	}

	if c.input != nil {
		if err := c.input.Destroy(); err != nil && first == nil {
			first = err
		}

		c.input = nil
	}

	if c.output != nil {
		if err := c.output.Destroy(); err != nil && first == nil {
			first = err
		}

		c.output = nil
	}

	return first
}
