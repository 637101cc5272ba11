package seed

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/poiesic/claimdesk/core"
	"gopkg.in/yaml.v3"
)

// Entry is one record in a seed file.
type Entry struct {
	Title       string      `yaml:"title"`
	Description string      `yaml:"description,omitempty"`
	Status      core.Status `yaml:"status"`
	CreatedAt   time.Time   `yaml:"created_at,omitempty"`
}

// File is the contents of a seed file.
type File struct {
	Claims     []Entry `yaml:"claims"`
	Variations []Entry `yaml:"variations"`
}

// ReadFile parses and validates the seed file at path.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a seed file from r and validates every entry.
func Parse(r io.Reader) (*File, error) {
	var file File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeedFile, err)
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// Len returns the total number of entries.
func (f *File) Len() int {
	return len(f.Claims) + len(f.Variations)
}

// Validate checks every entry, naming the first invalid one.
func (f *File) Validate() error {
	groups := f.byCollection()
	for _, collection := range core.Collections {
		for i, entry := range groups[collection] {
			if err := core.ValidateRecord(entry.record()); err != nil {
				return fmt.Errorf("%w: %s[%d]: %w", ErrInvalidSeedFile, collection, i, err)
			}
		}
	}
	return nil
}

// Records returns new records for the entries of one collection.
func (f *File) Records(collection core.Collection) []*core.Record {
	entries := f.byCollection()[collection]
	records := make([]*core.Record, len(entries))
	for i, entry := range entries {
		records[i] = entry.record()
	}
	return records
}

func (f *File) byCollection() map[core.Collection][]Entry {
	return map[core.Collection][]Entry{
		core.CollectionClaims:     f.Claims,
		core.CollectionVariations: f.Variations,
	}
}

func (e Entry) record() *core.Record {
	return &core.Record{
		Title:       e.Title,
		Description: e.Description,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt.UTC(),
	}
}
