// Package view derives display-ready podium, grid and spotlight data from a
// dataset. Nothing here touches HTML; templates and the CLI consume the results.
package view

import (
	"charity/internal/core"
)

// Fixed user-facing texts.
const (
	ErrorMessage       = "Unable to load donor information. Please try again later."
	EmptyPodiumText    = "Be the first to donate!"
	EmptyNoDonorsText  = "No donors to display yet. Be the first!"
	EmptyNoMatchesText = "No donors match your search."
)

// EmptyKind says why a grid has no cards.
type EmptyKind int

const (
	NotEmpty EmptyKind = iota
	EmptyNoDonors
	EmptyNoMatches
)

// Text returns the message shown for the empty state.
func (k EmptyKind) Text() string {
	switch k {
	case EmptyNoDonors:
		return EmptyNoDonorsText
	case EmptyNoMatches:
		return EmptyNoMatchesText
	}
	return ""
}

var (
	medals    = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}
	positions = map[int]string{1: "first", 2: "second", 3: "third"}
)

type (
	PodiumCard struct {
		Rank        int
		Position    string
		Medal       string
		DisplayName string
		Amount      string
		Message     string
		Date        string
	}

	PodiumView struct {
		Cards     []PodiumCard
		Empty     bool
		EmptyText string
	}

	GridCard struct {
		DisplayName string
		Anonymous   bool
		Amount      string
		Message     string
		Date        string
	}

	// GridQuery is the current sort key and search text.
	GridQuery struct {
		Sort   core.SortKey
		Search string
	}

	GridView struct {
		Cards     []GridCard
		Query     GridQuery
		EmptyKind EmptyKind
		EmptyText string
	}

	StatsView struct {
		TotalDonors  string `json:"total_donors"`
		NamedTotal   string `json:"named_total"`
		SilentTotal  string `json:"silent_total"`
		GrandTotal   string `json:"grand_total"`
		LivesChanged string `json:"lives_changed"`
	}
)

type Renderer struct {
	Format Formatter
}

func NewRenderer(f Formatter) *Renderer {
	return &Renderer{Format: f}
}

// Podium returns up to three cards in display order [2nd, 1st, 3rd].
func (r *Renderer) Podium(ds core.Dataset) PodiumView {
	top := core.TopDonors(ds.Donors(), core.PodiumSize)
	if len(top) == 0 {
		return PodiumView{Empty: true, EmptyText: EmptyPodiumText}
	}
	placements := core.PodiumOrder(top)
	cards := make([]PodiumCard, 0, len(placements))
	for _, p := range placements {
		cards = append(cards, PodiumCard{
			Rank:        p.Rank,
			Position:    positions[p.Rank],
			Medal:       medals[p.Rank],
			DisplayName: p.Donor.DisplayName(),
			Amount:      r.Format.Amount(p.Donor.Amount),
			Message:     p.Donor.Message,
			Date:        r.Format.Date(p.Donor.Date),
		})
	}
	return PodiumView{Cards: cards}
}

// Grid filters the full dataset by q.Search, then sorts by q.Sort. It never
// works from a previous result, so sort and search compose from the source.
func (r *Renderer) Grid(ds core.Dataset, q GridQuery) GridView {
	all := ds.Donors()
	v := GridView{Query: q}
	if len(all) == 0 {
		v.EmptyKind = EmptyNoDonors
		v.EmptyText = EmptyNoDonors.Text()
		return v
	}
	matched := core.SortDonors(core.FilterDonors(all, q.Search), q.Sort)
	if len(matched) == 0 {
		v.EmptyKind = EmptyNoMatches
		v.EmptyText = EmptyNoMatches.Text()
		return v
	}
	v.Cards = make([]GridCard, 0, len(matched))
	for _, d := range matched {
		v.Cards = append(v.Cards, GridCard{
			DisplayName: d.DisplayName(),
			Anonymous:   d.Anonymous,
			Amount:      r.Format.Amount(d.Amount),
			Message:     d.Message,
			Date:        r.Format.Date(d.Date),
		})
	}
	return v
}

// Spotlight is the single line shown by the rotator.
func (r *Renderer) Spotlight(d core.Donor) string {
	return d.DisplayName() + " - " + r.Format.Amount(d.Amount)
}

// SpotlightLines renders every donor in source order.
func (r *Renderer) SpotlightLines(ds core.Dataset) []string {
	donors := ds.Donors()
	out := make([]string, len(donors))
	for i, d := range donors {
		out[i] = r.Spotlight(d)
	}
	return out
}

func (r *Renderer) Stats(s core.Stats) StatsView {
	return StatsView{
		TotalDonors:  r.Format.Number(int64(s.TotalDonorCount)),
		NamedTotal:   r.Format.Whole(s.NamedTotal),
		SilentTotal:  r.Format.Whole(s.SilentTotal),
		GrandTotal:   r.Format.Whole(s.GrandTotal),
		LivesChanged: r.Format.Number(s.LivesChanged),
	}
}
