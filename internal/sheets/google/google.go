package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"charity/internal/core"
	"charity/internal/sources"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads the donor list that volunteers maintain in a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	donorsSheet   string
	silentSheet   string
}

// Ensure interface conformance
var _ sources.Source = (*Client)(nil)

// Config names the spreadsheet and its two tabs.
type Config struct {
	SpreadsheetID string
	DonorsSheet   string
	SilentSheet   string
}

// New creates a Sheets client using Service Account credentials from the environment.
// Default tab names: "Donors" and "Silent".
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if cfg.DonorsSheet == "" {
		cfg.DonorsSheet = "Donors"
	}
	if cfg.SilentSheet == "" {
		cfg.SilentSheet = "Silent"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		donorsSheet:   cfg.DonorsSheet,
		silentSheet:   cfg.SilentSheet,
	}, nil
}

// newSheetsService initializes a read-only Sheets Service.
// Uses GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ReadDonors implements sources.DonorReader. Columns: name, amount, date, message, anonymous.
func (c *Client) ReadDonors(ctx context.Context) ([]core.Donor, error) {
	values, err := c.readRange(ctx, c.donorsSheet, "A2:E")
	if err != nil {
		return nil, err
	}
	return parseDonorRows(values)
}

// ReadSilent implements sources.SilentReader. Column A holds amounts.
func (c *Client) ReadSilent(ctx context.Context) ([]core.Money, error) {
	values, err := c.readRange(ctx, c.silentSheet, "A2:A")
	if err != nil {
		return nil, err
	}
	return parseSilentRows(values)
}

func (c *Client) readRange(ctx context.Context, sheetName, cells string) ([][]interface{}, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!%s", sheetName, cells)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}
