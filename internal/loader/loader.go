// Package loader fetches the named and silent donor datasets and decides
// which failures are fatal.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charity/internal/core"
	"charity/internal/log"
	"charity/internal/sources"

	"golang.org/x/sync/errgroup"
)

// ErrDonorsUnavailable is the single fatal load error. It wraps the source failure.
var ErrDonorsUnavailable = errors.New("donor information unavailable")

const DefaultTimeout = 10 * time.Second

type Loader struct {
	donors  sources.DonorReader
	silent  sources.SilentReader
	timeout time.Duration
	logger  *log.Logger
}

// New builds a loader. A nil silent reader is treated as an empty silent set.
func New(donors sources.DonorReader, silent sources.SilentReader, timeout time.Duration, logger *log.Logger) *Loader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Loader{
		donors:  donors,
		silent:  silent,
		timeout: timeout,
		logger:  logger.WithComponent(log.ComponentLoader),
	}
}

// Load reads both sources concurrently, once, without retries.
// A silent-source failure degrades to zero silent donations.
func (l *Loader) Load(ctx context.Context) (core.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var (
		donors    []core.Donor
		silent    []core.Money
		donorErr  error
		silentErr error
	)

	// Neither goroutine returns an error: one failing source must not cancel the other.
	var g errgroup.Group
	g.Go(func() error {
		if l.donors == nil {
			donorErr = errors.New("no donor source configured")
			return nil
		}
		donors, donorErr = l.donors.ReadDonors(ctx)
		return nil
	})
	g.Go(func() error {
		if l.silent == nil {
			return nil
		}
		silent, silentErr = l.silent.ReadSilent(ctx)
		return nil
	})
	_ = g.Wait()

	if donorErr != nil {
		l.logger.ErrorContext(ctx, "Failed to load named donors",
			log.FieldError, donorErr, log.FieldOperation, log.OpLoad)
		return core.Dataset{}, fmt.Errorf("%w: %v", ErrDonorsUnavailable, donorErr)
	}
	if silentErr != nil {
		l.logger.WarnContext(ctx, "Silent donations unavailable, continuing without them",
			log.FieldError, silentErr, log.FieldOperation, log.OpLoad)
		silent = nil
	}

	ds := core.NewDataset(donors, silent)
	l.logger.DebugContext(ctx, "Datasets read",
		log.FieldDonorCount, len(donors), log.FieldSilentCount, len(silent))
	return ds, nil
}
