package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/storage"
)

// Config holds import tuning parameters.
type Config struct {
	// BatchSize is the number of records written per repository call
	BatchSize int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of attempts for each batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns the default import configuration.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Validate checks that every parameter is positive.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be greater than 0", ErrInvalidImportConfig)
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("%w: report interval must be greater than 0", ErrInvalidImportConfig)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("%w: max retries must be greater than 0", ErrInvalidImportConfig)
	}
	return nil
}

// Summary counts the records written by an import.
type Summary struct {
	Claims     int
	Variations int
	Elapsed    time.Duration
}

// Total returns the number of records written.
func (s Summary) Total() int {
	return s.Claims + s.Variations
}

// Importer writes seed records into the claims and variations repositories.
type Importer struct {
	claims     storage.RecordRepository
	variations storage.RecordRepository
	config     *Config
	progress   io.Writer
	logger     *slog.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer) error

// WithConfig sets the import configuration.
// Default is DefaultConfig().
func WithConfig(config *Config) ImporterOption {
	return func(i *Importer) error {
		if config == nil {
			config = DefaultConfig()
		}
		if err := config.Validate(); err != nil {
			return err
		}
		i.config = config
		return nil
	}
}

// WithProgress sets where progress lines are written.
// Default discards progress.
func WithProgress(w io.Writer) ImporterOption {
	return func(i *Importer) error {
		if w == nil {
			w = io.Discard
		}
		i.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ImporterOption {
	return func(i *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// NewImporter creates an importer for the two collections.
func NewImporter(claims, variations storage.RecordRepository, opts ...ImporterOption) (*Importer, error) {
	if claims == nil {
		return nil, ErrClaimsRepositoryRequired
	}
	if variations == nil {
		return nil, ErrVariationsRepositoryRequired
	}

	i := &Importer{
		claims:     claims,
		variations: variations,
		config:     DefaultConfig(),
		progress:   io.Discard,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// Seed writes the built-in sample records.
func (i *Importer) Seed(ctx context.Context) (Summary, error) {
	return i.Import(ctx, Samples())
}

// ImportFile reads, validates and writes the seed file at path.
func (i *Importer) ImportFile(ctx context.Context, path string) (Summary, error) {
	file, err := ReadFile(path)
	if err != nil {
		return Summary{}, err
	}
	return i.Import(ctx, file)
}

// Import validates every entry of file, then writes both collections
// concurrently in batches. Nothing is written if any entry is invalid.
// Batches already written stay written if a later batch fails.
func (i *Importer) Import(ctx context.Context, file *File) (Summary, error) {
	if file == nil {
		return Summary{}, fmt.Errorf("%w: no records", ErrInvalidSeedFile)
	}
	if err := file.Validate(); err != nil {
		return Summary{}, err
	}

	total := file.Len()
	if total == 0 {
		fmt.Fprintf(i.progress, "No records to import\n")
		return Summary{}, nil
	}

	fmt.Fprintf(i.progress, "Importing %d claims and %d variations (batch size: %d)\n",
		len(file.Claims), len(file.Variations), i.config.BatchSize)

	tracker := NewProgressTracker(i.progress, total, i.config.ReportInterval)
	tracker.Start()

	pool, err := ants.NewPool(len(core.Collections))
	if err != nil {
		return Summary{}, err
	}
	defer pool.Release()

	jobs := []struct {
		repo    storage.RecordRepository
		records []*core.Record
		written int
		err     error
	}{
		{repo: i.claims, records: file.Records(core.CollectionClaims)},
		{repo: i.variations, records: file.Records(core.CollectionVariations)},
	}

	var wg sync.WaitGroup
	for idx := range jobs {
		job := &jobs[idx]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			job.written, job.err = i.writeBatches(ctx, job.repo, job.records, tracker)
		})
		if submitErr != nil {
			wg.Done()
			job.err = submitErr
		}
	}
	wg.Wait()

	summary := Summary{
		Claims:     jobs[0].written,
		Variations: jobs[1].written,
		Elapsed:    tracker.Elapsed(),
	}
	if err := errors.Join(jobs[0].err, jobs[1].err); err != nil {
		fmt.Fprintln(i.progress)
		return summary, err
	}

	tracker.Finish()
	fmt.Fprintf(i.progress, "Import complete. Wrote %d records in %v\n",
		summary.Total(), summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}

// writeBatches writes records to repo in batches and returns how many were written.
func (i *Importer) writeBatches(ctx context.Context, repo storage.RecordRepository, records []*core.Record, tracker *ProgressTracker) (int, error) {
	written := 0
	for start := 0; start < len(records); start += i.config.BatchSize {
		end := min(start+i.config.BatchSize, len(records))
		batch := records[start:end]

		err := RetryWithBackoff(ctx, i.logger, func() error {
			_, err := repo.AddRecords(ctx, batch...)
			return err
		}, i.config.MaxRetries, i.config.RetryDelay)
		if err != nil {
			i.logger.Error("error writing batch", "collection", repo.Collection(), "offset", start, "err", err)
			return written, fmt.Errorf("writing %s batch at offset %d after %d attempts: %w",
				repo.Collection(), start, i.config.MaxRetries, err)
		}

		written += len(batch)
		tracker.Increment(len(batch))
	}

	i.logger.Debug("collection imported", "collection", repo.Collection(), "records", written)
	return written, nil
}
