package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-star/internal/domain"
	"github.com/ahrav/go-star/internal/ports"
)

// Batch is a loaded run configuration: the elections to tally together with
// the settings to tally them with. A Batch is read-only once loaded.
type Batch struct {
	// Name identifies the batch.
	Name string
	// Options applies to every election in the batch.
	Options domain.Options
	// Seed is the base seed for random tiebreak draws.
	Seed uint64
	// Concurrency bounds how many elections are tallied at once.
	Concurrency int
	// Elections holds the built elections in configuration order.
	Elections []*domain.Election
	// Expected holds one outcome per election, or nil when the batch is
	// not verified.
	Expected []domain.ExpectedOutcome
}

// Loader provides YAML run-configuration parsing, validation, and caching,
// turning a declarative run file into a Batch of built elections.
// Ballots, option files and expected outcomes are read through a
// ports.ElectionImporter.
type Loader struct {
	// validator performs struct field validation using the custom
	// semver and staroption rules.
	validator *validator.Validate
	// importer reads the reference data files a configuration points at.
	importer ports.ElectionImporter
	logger   *slog.Logger
	// cache stores built batches indexed by the SHA256 hash of the
	// normalized configuration and its base directory.
	// WARNING: Cached batches are shared and MUST NOT be mutated.
	cache   map[string]*Batch
	cacheMu sync.RWMutex
	// sf prevents duplicate builds when several goroutines load the same
	// configuration at once.
	sf singleflight.Group
}

// NewLoader creates a Loader that reads reference data through importer.
// NewLoader returns an error if validator registration fails.
func NewLoader(importer ports.ElectionImporter, logger *slog.Logger) (*Loader, error) {
	if importer == nil {
		return nil, fmt.Errorf("importer is required: %w", domain.ErrEmptyValue)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterRunValidators(v); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return &Loader{
		validator: v,
		importer:  importer,
		logger:    ResolveLogger(logger),
		cache:     make(map[string]*Batch),
	}, nil
}

// LoadFromFile loads a run configuration from a YAML file. Relative paths
// inside it are resolved against the file's directory.
// WARNING: The returned batch may be a cached instance shared with other
// callers. It MUST NOT be mutated.
func (l *Loader) LoadFromFile(ctx context.Context, path string) (*Batch, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", ports.ErrConfigNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return l.load(ctx, data, filepath.Dir(cleanPath))
}

// LoadFromReader loads a run configuration from r. Relative paths inside it
// are resolved against baseDir.
// WARNING: The returned batch may be a cached instance shared with other
// callers. It MUST NOT be mutated.
func (l *Loader) LoadFromReader(ctx context.Context, r io.Reader, baseDir string) (*Batch, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}

	return l.load(ctx, data, baseDir)
}

func (l *Loader) load(ctx context.Context, data []byte, baseDir string) (*Batch, error) {
	config, err := l.parseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := l.validateConfig(config); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	hash, err := l.calculateConfigHash(config, baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	v, err, shared := l.sf.Do(hash, func() (any, error) {
		if batch, ok := l.getCachedBatch(hash); ok {
			return batch, nil
		}

		batch, err := l.buildBatch(ctx, config, baseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to build batch: %w", err)
		}

		l.cacheBatch(hash, batch)
		return batch, nil
	})
	if err != nil {
		return nil, err
	}

	l.logger.Debug("run configuration loaded",
		slog.String("name", config.Name),
		slog.String("hash", hash[:12]),
		slog.Bool("shared", shared),
	)
	return v.(*Batch), nil
}

// parseYAML decodes a RunConfig in strict mode so typos in field names are
// reported instead of silently ignored.
func (l *Loader) parseYAML(data []byte) (*RunConfig, error) {
	var config RunConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("YAML decode failed: %w", err)
	}
	return &config, nil
}

func (l *Loader) validateConfig(config *RunConfig) error {
	if err := l.validator.Struct(config); err != nil {
		return fmt.Errorf("struct validation failed: %w", err)
	}

	if err := l.validateSemantics(config); err != nil {
		return fmt.Errorf("semantic validation failed: %w", err)
	}

	return nil
}

// validateSemantics checks rules struct tags cannot express.
func (l *Loader) validateSemantics(config *RunConfig) error {
	verr := domain.NewValidationError("run config")

	names := make(map[string]int, len(config.Elections))
	for i, e := range config.Elections {
		if prev, exists := names[e.Name]; exists {
			verr.AddErrorf("election %d reuses name %q from election %d", i+1, e.Name, prev+1)
			continue
		}
		names[e.Name] = i
	}

	if verr.HasErrors() {
		return errors.Join(domain.ErrInvalidConfiguration, verr)
	}
	return nil
}

// buildBatch reads every file the configuration references and builds the
// elections.
func (l *Loader) buildBatch(ctx context.Context, config *RunConfig, baseDir string) (*Batch, error) {
	opts, err := domain.ParseOptions(config.Options...)
	if err != nil {
		return nil, err
	}
	if config.OptionsFile != "" {
		fileOpts, err := l.importOptions(resolvePath(baseDir, config.OptionsFile))
		if err != nil {
			return nil, err
		}
		opts = opts.With(fileOpts)
	}

	batch := &Batch{
		Name:        config.Name,
		Options:     opts,
		Concurrency: config.Concurrency,
		Elections:   make([]*domain.Election, 0, len(config.Elections)),
	}
	if batch.Concurrency == 0 {
		batch.Concurrency = DefaultConcurrency
	}
	if config.Seed != nil {
		batch.Seed = *config.Seed
	} else {
		batch.Seed = uint64(time.Now().UnixNano())
	}

	builder := domain.NewElectionBuilder()
	for _, ec := range config.Elections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		builder.Reset().SetName(ec.Name).SetSeatCount(ec.Seats)
		if err := l.importBallots(resolvePath(baseDir, ec.Ballots), builder); err != nil {
			return nil, fmt.Errorf("election %q: %w", ec.Name, err)
		}
		batch.Elections = append(batch.Elections, builder.Build())
	}

	if config.Expected != "" {
		expected, err := l.importExpected(resolvePath(baseDir, config.Expected))
		if err != nil {
			return nil, err
		}
		if len(expected) != len(batch.Elections) {
			return nil, fmt.Errorf("%w: %d expected outcomes for %d elections",
				domain.ErrInvalidConfiguration, len(expected), len(batch.Elections))
		}
		batch.Expected = expected
	}

	return batch, nil
}

func (l *Loader) importBallots(path string, b *domain.ElectionBuilder) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open ballots: %w", err)
	}
	defer f.Close()
	return l.importer.ImportBallots(path, f, b)
}

func (l *Loader) importOptions(path string) (domain.Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.NoOptions, ports.NewConfigError("options_file", fmt.Errorf("failed to open options file: %w", err))
	}
	defer f.Close()
	return l.importer.ImportOptions(path, f)
}

func (l *Loader) importExpected(path string) ([]domain.ExpectedOutcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ports.NewConfigError("expected", fmt.Errorf("failed to open expected outcomes: %w", err))
	}
	defer f.Close()
	return l.importer.ImportExpected(path, f)
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

// calculateConfigHash computes the SHA256 hash of the normalized config and
// its base directory, so that equivalent YAML with different formatting
// shares a cache entry while the same file names in different directories
// do not.
func (l *Loader) calculateConfigHash(config *RunConfig, baseDir string) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(config); err != nil {
		return "", fmt.Errorf("failed to encode config for hashing: %w", err)
	}
	buf.WriteString(filepath.Clean(baseDir))

	hash := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(hash[:]), nil
}

func (l *Loader) getCachedBatch(hash string) (*Batch, bool) {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()

	batch, ok := l.cache[hash]
	return batch, ok
}

func (l *Loader) cacheBatch(hash string, batch *Batch) {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	l.cache[hash] = batch
}

// ClearCache removes all cached batches, forcing later loads to re-read
// ballot files. Use it when files referenced by a configuration change.
func (l *Loader) ClearCache() {
	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()

	l.cache = make(map[string]*Batch)
}
