package google

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"charity/internal/core"
	"charity/internal/sources"
)

// parseDonorRows converts a values matrix into donors. Blank rows are skipped;
// any other bad row rejects the sheet.
func parseDonorRows(values [][]interface{}) ([]core.Donor, error) {
	donors := make([]core.Donor, 0, len(values))
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		amt, err := core.ParseAmount(safeGet(row, 1))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d amount %q: %v", sources.ErrMalformed, i+2, safeGet(row, 1), err)
		}
		date, err := parseDateCell(raw, 2)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d date %q: %v", sources.ErrMalformed, i+2, safeGet(row, 2), err)
		}
		d := core.Donor{
			Name:      safeGet(row, 0),
			Amount:    amt,
			Date:      date,
			Message:   safeGet(row, 3),
			Anonymous: parseBool(safeGet(row, 4)),
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", sources.ErrMalformed, i+2, err)
		}
		donors = append(donors, d)
	}
	return donors, nil
}

func parseSilentRows(values [][]interface{}) ([]core.Money, error) {
	out := make([]core.Money, 0, len(values))
	for i, raw := range values {
		row := toStrings(raw)
		if isBlank(row) {
			continue
		}
		amt, err := core.ParseAmount(row[0])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d amount %q: %v", sources.ErrMalformed, i+2, row[0], err)
		}
		out = append(out, amt)
	}
	return out, nil
}

// sheetsEpoch is day zero of spreadsheet date serials.
var sheetsEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseDateCell reads a date cell rendered as SERIAL_NUMBER. Date-typed cells
// arrive as day serials; cells typed as text keep the ISO layouts ParseDate accepts.
func parseDateCell(raw []interface{}, i int) (core.Date, error) {
	if i >= len(raw) {
		return core.Date{}, nil
	}
	serial, ok := raw[i].(float64)
	if !ok {
		return core.ParseDate(strings.TrimSpace(fmt.Sprint(raw[i])))
	}
	if serial < 1 || math.IsInf(serial, 0) || math.IsNaN(serial) || serial > 2958465 {
		return core.Date{}, core.ErrInvalidDate
	}
	y, m, d := sheetsEpoch.AddDate(0, 0, int(math.Floor(serial))).Date()
	return core.NewDate(y, int(m), d), nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch n := v.(type) {
		case float64:
			// avoid exponent notation for large amounts
			out[i] = strconv.FormatFloat(n, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}

func safeGet(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "x":
		return true
	}
	return false
}
