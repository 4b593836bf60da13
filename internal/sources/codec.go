package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"charity/internal/core"
)

// ErrMalformed marks a payload that could not be decoded into donor data.
var ErrMalformed = errors.New("malformed donor data")

type donorRecord struct {
	Name      string      `json:"name"`
	Amount    json.Number `json:"amount"`
	Date      string      `json:"date"`
	Message   string      `json:"message,omitempty"`
	Anonymous bool        `json:"anonymous"`
}

type silentPayload struct {
	SilentDonations []json.Number `json:"silentDonations"`
}

// DecodeDonors parses a donors.json array. Any bad record rejects the whole payload.
func DecodeDonors(r io.Reader) ([]core.Donor, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var recs []donorRecord
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	donors := make([]core.Donor, 0, len(recs))
	for i, rec := range recs {
		d, err := rec.toDonor()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, i, err)
		}
		donors = append(donors, d)
	}
	return donors, nil
}

func (rec donorRecord) toDonor() (core.Donor, error) {
	amt, err := core.ParseAmount(rec.Amount.String())
	if err != nil {
		return core.Donor{}, fmt.Errorf("amount %q: %w", rec.Amount, err)
	}
	date, err := core.ParseDate(rec.Date)
	if err != nil {
		return core.Donor{}, fmt.Errorf("date %q: %w", rec.Date, err)
	}
	d := core.Donor{
		Name:      rec.Name,
		Amount:    amt,
		Date:      date,
		Message:   rec.Message,
		Anonymous: rec.Anonymous,
	}
	if err := d.Validate(); err != nil {
		return core.Donor{}, err
	}
	return d, nil
}

// DecodeSilent parses {"silentDonations": [...]}. A missing or null list is empty.
func DecodeSilent(r io.Reader) ([]core.Money, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var p silentPayload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	out := make([]core.Money, 0, len(p.SilentDonations))
	for i, n := range p.SilentDonations {
		amt, err := core.ParseAmount(n.String())
		if err != nil {
			return nil, fmt.Errorf("%w: silent donation %d: %v", ErrMalformed, i, err)
		}
		out = append(out, amt)
	}
	return out, nil
}
