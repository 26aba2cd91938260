package onnx

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rxtech-lab/forest/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	config := Config{ModelPath: "model.onnx", Features: 4}.withDefaults()

	assert.Equal(t, "input", config.InputName)
	assert.Equal(t, "output", config.OutputName)
	assert.Equal(t, DefaultLibraryPath(), config.LibraryPath)

	custom := Config{LibraryPath: "/opt/ort.so", InputName: "x", OutputName: "probs"}.withDefaults()
	assert.Equal(t, "/opt/ort.so", custom.LibraryPath)
	assert.Equal(t, "x", custom.InputName)
	assert.Equal(t, "probs", custom.OutputName)
}

func TestDefaultLibraryPath(t *testing.T) {
	switch runtime.GOOS {
	case "windows":
		assert.Equal(t, "onnxruntime.dll", DefaultLibraryPath())
	case "darwin":
		assert.Equal(t, "libonnxruntime.dylib", DefaultLibraryPath())
	default:
		assert.Equal(t, "/usr/lib/libonnxruntime.so", DefaultLibraryPath())
	}
}

func TestNewClassifierRejectsBadConfig(t *testing.T) {
	_, err := NewClassifier(Config{ModelPath: "model.onnx"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeModelLoadFailed))
	assert.Contains(t, err.Error(), "feature count")

	_, err = NewClassifier(Config{ModelPath: filepath.Join(t.TempDir(), "missing.onnx"), Features: 4})
	assert.True(t, errors.HasCode(err, errors.ErrCodeModelLoadFailed))
	assert.Contains(t, err.Error(), "not readable")
}
