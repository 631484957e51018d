package analysis

import "github.com/chrisdamba/expcheck/internal/models"

// BundleSizes are the sizes reported in every grouping.
var BundleSizes = []int{1, 2, 3}

// BundleCounts maps an optimal bundle size to a number of rounds.
type BundleCounts map[int]int

func (c BundleCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

type BundleShare struct {
	Size    int
	Count   int
	Percent float64
	Bar     int // bar length, two units per round
}

type BundleReport struct {
	Overall BundleCounts
	ByPhase map[string]BundleCounts
	ByCity  map[string]BundleCounts
}

// Bundles groups the optimal bundle size of every scenario overall, by the
// fixed phase ranges and by the city of the round's representative order.
func Bundles(ds *models.Dataset, suffix string) (BundleReport, error) {
	report := BundleReport{
		Overall: BundleCounts{},
		ByPhase: make(map[string]BundleCounts),
		ByCity:  make(map[string]BundleCounts),
	}
	for _, r := range models.PhaseRanges {
		report.ByPhase[r.Name] = BundleCounts{}
	}
	for _, city := range models.Cities {
		report.ByCity[city] = BundleCounts{}
	}

	cityByRound := models.RoundCities(ds.Orders, suffix)

	scenarios := ds.Metadata.OptimalScenarios
	for _, key := range scenarios.Keys() {
		scenario, _ := scenarios.Get(key)
		round, err := scenario.RoundNumber(key)
		if err != nil {
			return report, err
		}
		size := scenario.OptimalBundleSize

		report.Overall[size]++

		city, ok := cityByRound[round]
		if !ok {
			city = models.CityUnknown
		}
		if report.ByCity[city] == nil {
			report.ByCity[city] = BundleCounts{}
		}
		report.ByCity[city][size]++

		if phase := models.PhaseOf(round); phase != "" {
			report.ByPhase[phase][size]++
		}
	}
	return report, nil
}

// Shares returns the overall distribution as a share of the 20 rounds.
func (r BundleReport) Shares() []BundleShare {
	out := make([]BundleShare, 0, len(BundleSizes))
	for _, size := range BundleSizes {
		count := r.Overall[size]
		out = append(out, BundleShare{
			Size:    size,
			Count:   count,
			Percent: float64(count) / models.TotalRounds * 100,
			Bar:     count * 2,
		})
	}
	return out
}
