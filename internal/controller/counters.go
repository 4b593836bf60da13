package controller

import (
	"charity/internal/counter"
)

// Pages with animated counters.
const (
	PageLanding = "landing"
	PageDonors  = "donors"
)

// Display keys of the animated counters.
const (
	KeyMoneyRaised       = "moneyRaised"
	KeyPeopleHelped      = "peopleHelped"
	KeyProjectsCompleted = "projectsCompleted"
	KeyVolunteers        = "volunteers"
	KeyNavbarAmount      = "navbarAmount"
	KeyTotalRaised       = "totalRaised"
	KeyTotalDonors       = "totalDonors"
	KeyLivesChanged      = "livesChanged"
)

// CounterSpec binds a display key to its animation plan.
type CounterSpec struct {
	Key  string
	Plan counter.Plan
}

// CounterSpecs returns the counters for page. Nothing animates until the load
// succeeded; a failed load shows no counters at all.
func (c *Controller) CounterSpecs(page string) []CounterSpec {
	st := c.Snapshot()
	if st.Status != StatusReady {
		return nil
	}
	currency := c.renderer.Format.Currency
	d := c.counterDuration
	grand := st.Stats.GrandTotal.Units()
	navbar := CounterSpec{Key: KeyNavbarAmount, Plan: counter.Plan{
		Target: grand, Duration: d, Mode: counter.ModeSteps, Steps: counter.NavbarSteps, Prefix: currency,
	}}

	switch page {
	case PageLanding:
		impact := c.settings.Impact
		return []CounterSpec{
			{Key: KeyMoneyRaised, Plan: counter.Plan{Target: grand, Duration: d, Mode: counter.ModeTick, Prefix: currency, Suffix: "+"}},
			{Key: KeyPeopleHelped, Plan: counter.Plan{Target: impact.PeopleHelped, Duration: d, Mode: counter.ModeTick, Suffix: "+"}},
			{Key: KeyProjectsCompleted, Plan: counter.Plan{Target: impact.ProjectsCompleted, Duration: d, Mode: counter.ModeTick}},
			{Key: KeyVolunteers, Plan: counter.Plan{Target: impact.Volunteers, Duration: d, Mode: counter.ModeTick}},
			navbar,
		}
	case PageDonors:
		return []CounterSpec{
			{Key: KeyTotalRaised, Plan: counter.Plan{Target: grand, Duration: d, Mode: counter.ModeSteps, Prefix: currency}},
			{Key: KeyTotalDonors, Plan: counter.Plan{Target: int64(st.Stats.TotalDonorCount), Duration: d, Mode: counter.ModeSteps}},
			{Key: KeyLivesChanged, Plan: counter.Plan{Target: st.Stats.LivesChanged, Duration: d, Mode: counter.ModeSteps}},
			navbar,
		}
	}
	return nil
}
