package report

import (
	"fmt"
	"strings"

	"github.com/chrisdamba/expcheck/internal/analysis"
	"github.com/chrisdamba/expcheck/internal/models"
	"github.com/chrisdamba/expcheck/internal/validator"
)

func (p *Printer) Validation(res validator.Result) {
	p.section("VALIDATING ORDER DATA STRUCTURE")
	for _, line := range res.Passed {
		p.println("✓ " + line)
	}

	p.println("")
	if len(res.Errors) > 0 {
		p.println(p.bad.Render("❌ ERRORS FOUND:"))
		for _, e := range res.Errors {
			p.println("  - " + e)
		}
	} else {
		p.println(p.good.Render("✅ All validations passed!"))
	}

	if len(res.Warnings) > 0 {
		p.println("\n⚠️  WARNINGS:")
		for _, w := range res.Warnings {
			p.println("  - " + w)
		}
	}
	p.println("")
}

func (p *Printer) CityPerformance(r analysis.CityReport) {
	p.section("CITY PERFORMANCE ANALYSIS")
	p.println("\nAverage Optimal Revenue Per Second (RPS):\n")
	for _, c := range r.Ranking {
		p.printf("%s %d. %-12s %.3f $/s  (Rounds: %s)\n", c.Badge, c.Rank, c.City, c.RPS, intList(c.Rounds))
	}

	p.println("\nPerformance Gaps:")
	for _, g := range r.Gaps {
		p.printf("  %s vs %s: +%.1f%%\n", g.Leader, g.City, g.Percent)
	}
	p.println("")
}

func (p *Printer) Phases(phases []analysis.PhaseSummary) {
	p.section("PHASE ANALYSIS")
	for _, ph := range phases {
		p.printf("\n%s Phase:\n", strings.ToUpper(ph.Name))
		if ph.RoundCount == 0 {
			p.println("  Rounds: none (0 rounds)")
		} else {
			p.printf("  Rounds: %d-%d (%d rounds)\n", ph.FirstRound, ph.LastRound, ph.RoundCount)
		}
		if ph.HasRecommendation {
			p.println("  Recommendations: ✓ Active")
		} else {
			p.println("  Recommendations: ✗ None")
		}
	}
	p.println("")
}

func (p *Printer) Alignment(r analysis.AlignmentReport) {
	p.section("RECOMMENDATION ALIGNMENT ANALYSIS")
	p.printf("\nRecommendation Alignment Types (Phase B: Rounds %d-%d):\n\n", models.FirstAssistedRound, models.LastAssistedRound)
	for _, g := range r.Groups {
		p.printf("  %-12s %d rounds  %s\n", g.Type, g.Count, g.Description)
		p.printf("               Rounds: %s\n", intList(g.Rounds))
		p.println("")
	}
	p.printf("Total Phase B rounds: %d\n", r.Total)
	p.println("")
}

func (p *Printer) Bundles(r analysis.BundleReport) {
	p.section("OPTIMAL BUNDLE SIZE DISTRIBUTION")
	p.println("\nOverall Distribution:\n")
	for _, s := range r.Shares() {
		p.printf("  %d-order optimal: %2d rounds (%4.1f%%) %s\n", s.Size, s.Count, s.Percent, strings.Repeat("█", s.Bar))
	}

	p.println("\n\nBy Phase:\n")
	for _, phase := range models.PhaseRanges {
		p.printf("  %-10s %s\n", phase.Name, bundleColumns(r.ByPhase[phase.Name]))
	}

	p.println("\n\nBy City:\n")
	cities := models.Cities
	if r.ByCity[models.CityUnknown].Total() > 0 {
		cities = append(append([]string(nil), cities...), models.CityUnknown)
	}
	for _, city := range cities {
		p.printf("  %-12s %s\n", city, bundleColumns(r.ByCity[city]))
	}
	p.println("")
}

func bundleColumns(c analysis.BundleCounts) string {
	cols := make([]string, len(analysis.BundleSizes))
	for i, size := range analysis.BundleSizes {
		cols[i] = fmt.Sprintf("%d-order:%d", size, c[size])
	}
	return strings.Join(cols, "  ")
}

func (p *Printer) Earnings(r analysis.EarningsReport) {
	p.section("EARNINGS & TIME ANALYSIS")

	p.println("\nEarnings per Order:")
	p.printf("  Average: $%.2f\n", r.Earnings.Average)
	p.printf("  Range: $%s - $%s\n", number(r.Earnings.Min), number(r.Earnings.Max))
	p.printf("  Total (all %d orders): $%s\n", r.Orders, number(r.Earnings.Total))

	p.println("\nTime per Order:")
	p.printf("  Average: %.1fs\n", r.BaseTime.Average)
	p.printf("  Range: %ss - %ss\n", number(r.BaseTime.Min), number(r.BaseTime.Max))
	p.printf("  Total (all %d orders): %ss (%.1f min)\n", r.Orders, number(r.BaseTime.Total), r.TotalMinutes())

	p.println("\n\nBy City:\n")
	for _, c := range r.ByCity {
		p.printf("  %-12s %d orders, $%4s total, %5.1fs avg time\n", c.City, c.Orders, number(c.Earnings), c.TimeTotal)
	}
	p.println("")
}

func (p *Printer) Summary(r analysis.SummaryReport) {
	p.section("EXPERIMENT SUMMARY")

	p.println("\n📊 Experiment Configuration:")
	p.printf("  Total Rounds: %d\n", r.TotalRounds)
	p.printf("  Orders per Round: %d\n", r.OrdersPerRound)
	p.printf("  Total Orders: %d\n", r.TotalOrders)
	p.printf("  Cities: %s\n", strings.Join(r.CityRotation, ", "))

	p.println("\n🎯 Optimal Performance Targets:")
	p.printf("  Average Optimal RPS across all rounds: %.3f $/s\n", r.AvgOptimalRPS)

	p.println("\n✨ Best Single Round:")
	p.printf("  Round %d: %s with %.3f $/s (Bundle size: %d)\n", r.Best.Round, r.Best.Combo, r.Best.RPS, r.Best.BundleSize)
	p.println("")
}
