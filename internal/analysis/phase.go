package analysis

import "github.com/chrisdamba/expcheck/internal/models"

type PhaseSummary struct {
	Name              string
	FirstRound        int
	LastRound         int
	RoundCount        int
	HasRecommendation bool
}

// Phases describes metadata.phases in document order. Contiguity and coverage are not checked.
func Phases(md models.Metadata) []PhaseSummary {
	var out []PhaseSummary
	for _, name := range md.Phases.Keys() {
		phase, _ := md.Phases.Get(name)
		s := PhaseSummary{
			Name:              name,
			RoundCount:        len(phase.Rounds),
			HasRecommendation: phase.HasRecommendation,
		}
		if n := len(phase.Rounds); n > 0 {
			s.FirstRound = phase.Rounds[0]
			s.LastRound = phase.Rounds[n-1]
		}
		out = append(out, s)
	}
	return out
}
