package core

// LivesPerHundred is how many lives each full hundred currency units changes.
const LivesPerHundred = 5

// Dataset is the loaded donor data. It is never mutated after construction;
// every derived view works on a copy.
type Dataset struct {
	donors []Donor
	silent []Money
}

// NewDataset copies its inputs so callers cannot mutate the dataset afterwards.
func NewDataset(donors []Donor, silent []Money) Dataset {
	return Dataset{
		donors: append([]Donor(nil), donors...),
		silent: append([]Money(nil), silent...),
	}
}

// Donors returns the named donors in input order.
func (d Dataset) Donors() []Donor {
	return append([]Donor(nil), d.donors...)
}

// Silent returns the silent donation amounts.
func (d Dataset) Silent() []Money {
	return append([]Money(nil), d.silent...)
}

// Len is the number of named donors.
func (d Dataset) Len() int {
	return len(d.donors)
}

// Stats is the aggregate summary of a dataset. It is always recomputed as a whole.
type Stats struct {
	TotalDonorCount int
	NamedTotal      Money
	SilentTotal     Money
	GrandTotal      Money
	LivesChanged    int64
}

// Aggregate computes totals in integer cents.
func Aggregate(d Dataset) Stats {
	var s Stats
	s.TotalDonorCount = len(d.donors)
	for _, donor := range d.donors {
		s.NamedTotal = s.NamedTotal.Add(donor.Amount)
	}
	for _, amt := range d.silent {
		s.SilentTotal = s.SilentTotal.Add(amt)
	}
	s.GrandTotal = s.NamedTotal.Add(s.SilentTotal)
	s.LivesChanged = LivesChanged(s.GrandTotal)
	return s
}

// LivesChanged is floor(units/100) * LivesPerHundred.
func LivesChanged(total Money) int64 {
	return (total.Units() / 100) * LivesPerHundred
}
