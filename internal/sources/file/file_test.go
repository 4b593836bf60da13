package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"charity/internal/sources"
)

func TestStoreReadsBothFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	mustWrite(sources.DonorsFile, `[{"name":"A","amount":100,"date":"2024-01-01","anonymous":false}]`)
	mustWrite(sources.SilentFile, `{"silentDonations":[5,6]}`)

	s := New(dir)
	donors, err := s.ReadDonors(context.Background())
	if err != nil || len(donors) != 1 || donors[0].Name != "A" {
		t.Fatalf("unexpected donors: %v (err=%v)", donors, err)
	}
	silent, err := s.ReadSilent(context.Background())
	if err != nil || len(silent) != 2 {
		t.Fatalf("unexpected silent: %v (err=%v)", silent, err)
	}
}

func TestStoreMissingFiles(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.ReadDonors(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error for donors, got %v", err)
	}
	if _, err := s.ReadSilent(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error for silent, got %v", err)
	}
}
