package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"charity/internal/core"
	"charity/internal/sources"
)

// Store reads donors.json and silent-donations.json from a directory on every call.
type Store struct {
	base string
}

var _ sources.Source = (*Store)(nil)

func New(base string) *Store {
	if base == "" {
		base = "data"
	}
	return &Store{base: base}
}

// ReadDonors implements sources.DonorReader
func (s *Store) ReadDonors(_ context.Context) ([]core.Donor, error) {
	f, err := os.Open(filepath.Join(s.base, sources.DonorsFile))
	if err != nil {
		return nil, fmt.Errorf("open donors file: %w", err)
	}
	defer f.Close()
	return sources.DecodeDonors(f)
}

// ReadSilent implements sources.SilentReader
func (s *Store) ReadSilent(_ context.Context) ([]core.Money, error) {
	f, err := os.Open(filepath.Join(s.base, sources.SilentFile))
	if err != nil {
		return nil, fmt.Errorf("open silent donations file: %w", err)
	}
	defer f.Close()
	return sources.DecodeSilent(f)
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string {
	return s.base
}
