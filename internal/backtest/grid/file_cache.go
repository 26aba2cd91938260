package grid

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/forest/internal/logger"
	"github.com/rxtech-lab/forest/internal/version"
	"github.com/rxtech-lab/forest/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const recordExt = ".yaml"

// FileCache writes one YAML record per key under a directory. Records
// produced by an incompatible library version are treated as misses.
type FileCache struct {
	dir     string
	version string
	log     *logger.Logger
}

// NewFileCache creates the cache directory if needed.
func NewFileCache(dir string, log *logger.Logger) (*FileCache, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to create cache directory %s", dir)
	}

	return &FileCache{
		dir:     dir,
		version: version.GetVersion(),
		log:     log,
	}, nil
}

// DefaultCacheDir is <user cache dir>/forest/grid.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}

	return filepath.Join(base, "forest", "grid")
}

func (c *FileCache) Dir() string {
	return c.dir
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+recordExt)
}

// Get implements Cache.
func (c *FileCache) Get(key string) (Record, bool, error) {
	content, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, false, nil
		}

		return Record{}, false, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read cache record %s", key)
	}

	var record Record
	if err := yaml.Unmarshal(content, &record); err != nil {
		c.log.Warn("Ignoring unreadable cache record", zap.String("key", key), zap.Error(err))

		return Record{}, false, nil
	}

	if err := version.CheckCompatibility(c.version, record.Version); err != nil {
		c.log.Debug("Ignoring cache record from another version",
			zap.String("key", key),
			zap.String("record_version", record.Version),
			zap.Error(err),
		)

		return Record{}, false, nil
	}

	return record, true, nil
}

// Put implements Cache. The record is written to a temp file and renamed into place.
func (c *FileCache) Put(key string, record Record) error {
	if record.Version == "" {
		record.Version = c.version
	}

	content, err := yaml.Marshal(record)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeGridRunFailed, err, "failed to encode cache record %s", key)
	}

	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return errors.Wrapf(errors.ErrCodeGridRunFailed, err, "failed to write cache record %s", key)
	}

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return errors.Wrapf(errors.ErrCodeGridRunFailed, err, "failed to write cache record %s", key)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return errors.Wrapf(errors.ErrCodeGridRunFailed, err, "failed to write cache record %s", key)
	}

	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())

		return errors.Wrapf(errors.ErrCodeGridRunFailed, err, "failed to write cache record %s", key)
	}

	return nil
}

// Reset implements Cache. Only record files are removed.
func (c *FileCache) Reset() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to list cache directory %s", c.dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}

		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to remove cache record %s", entry.Name())
		}
	}

	return nil
}

// setVersion overrides the version stamped on and accepted from records.
func (c *FileCache) setVersion(v string) {
	c.version = v
}
