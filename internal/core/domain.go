package core

import (
	"errors"
	"strings"
	"time"
)

// AnonymousName replaces the stored name of every donor marked anonymous.
const AnonymousName = "Anonymous Supporter"

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Donor is a named donation record. Name is never shown when Anonymous is set.
	Donor struct {
		Name      string
		Amount    Money
		Date      Date
		Message   string
		Anonymous bool
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrNegative      = errors.New("amount must not be negative")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or RFC3339. An empty string yields an undated Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	y, m, d := t.Date()
	return NewDate(y, int(m), d), nil
}

// IsEmpty reports whether the donation carries no date.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegative
	}
	return nil
}

// Units truncates to whole currency units.
func (m Money) Units() int64 {
	return m.Cents / 100
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// FromUnits builds an amount from whole currency units.
func FromUnits(units int64) Money {
	return Money{Cents: units * 100}
}

// DisplayName is the only name any view may show for the donor.
func (d Donor) DisplayName() string {
	if d.Anonymous {
		return AnonymousName
	}
	return d.Name
}

func (d Donor) Validate() error {
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if !d.Anonymous && strings.TrimSpace(d.Name) == "" {
		return errors.New("named donor without a name")
	}
	if len(d.Message) > 500 {
		return errors.New("message too long (max 500 characters)")
	}
	return nil
}
