package sources

import (
	"context"

	"charity/internal/core"
)

// Ports for inbound donor data. Each source may fail on its own.
type (
	DonorReader interface {
		// ReadDonors returns named donors in source order.
		ReadDonors(ctx context.Context) ([]core.Donor, error)
	}

	SilentReader interface {
		// ReadSilent returns the amounts of silent (amount-only) donations.
		ReadSilent(ctx context.Context) ([]core.Money, error)
	}

	// Source provides both datasets.
	Source interface {
		DonorReader
		SilentReader
	}
)

// Canonical object names shared by file, HTTP and S3 sources.
const (
	DonorsFile = "donors.json"
	SilentFile = "silent-donations.json"
)
