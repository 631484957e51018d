// Package analysis computes the descriptive statistics reported for a
// structurally valid dataset. Every function is a read-only projection.
package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chrisdamba/expcheck/internal/models"
)

var (
	ErrZeroRate    = errors.New("city has a zero average optimal rps")
	ErrNoScenarios = errors.New("metadata has no optimal scenarios")
)

// rankBadges decorate ranks 1-3; anything lower gets blanks.
var rankBadges = []string{"🥇", "🥈", "🥉"}

type CityRank struct {
	Rank   int
	Badge  string
	City   string
	RPS    float64
	Rounds []int
}

type CityGap struct {
	Leader  string
	City    string
	Percent float64
}

type CityReport struct {
	Ranking []CityRank
	Gaps    []CityGap
}

// CityPerformance ranks cities by avg_optimal_rps, highest first, keeping
// document order between equal rates, and measures how far the leader is ahead of each other city.
func CityPerformance(md models.Metadata) (CityReport, error) {
	var report CityReport

	cities := md.CityStats.Keys()
	sort.SliceStable(cities, func(i, j int) bool {
		a, _ := md.CityStats.Get(cities[i])
		b, _ := md.CityStats.Get(cities[j])
		return a.AvgOptimalRPS > b.AvgOptimalRPS
	})

	for i, city := range cities {
		stat, _ := md.CityStats.Get(city)
		badge := "  "
		if i < len(rankBadges) {
			badge = rankBadges[i]
		}
		report.Ranking = append(report.Ranking, CityRank{
			Rank:   i + 1,
			Badge:  badge,
			City:   city,
			RPS:    stat.AvgOptimalRPS,
			Rounds: stat.Rounds,
		})
	}

	if len(report.Ranking) == 0 {
		return report, nil
	}

	leader := report.Ranking[0]
	for _, r := range report.Ranking[1:] {
		if r.RPS == 0 {
			return report, fmt.Errorf("%w: %s", ErrZeroRate, r.City)
		}
		report.Gaps = append(report.Gaps, CityGap{
			Leader:  leader.City,
			City:    r.City,
			Percent: (leader.RPS - r.RPS) / r.RPS * 100,
		})
	}
	return report, nil
}
