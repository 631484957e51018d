package analysis

import (
	"strings"

	"github.com/chrisdamba/expcheck/internal/models"
)

// AlignmentCategories is the reporting order of the alignment types.
var AlignmentCategories = []string{
	models.AlignmentAligned,
	models.AlignmentRec2Opt1,
	models.AlignmentRec2Opt3,
}

var alignmentDescriptions = map[string]string{
	models.AlignmentAligned:  "System correct (rec=2, opt=2)",
	models.AlignmentRec2Opt1: "Over-recommends (rec=2, opt=1)",
	models.AlignmentRec2Opt3: "Under-recommends (rec=2, opt=3)",
}

type AlignmentGroup struct {
	Type        string
	Description string
	Count       int
	Rounds      []int
}

type AlignmentReport struct {
	// Groups holds the known categories that occur, in AlignmentCategories order.
	Groups []AlignmentGroup
	// Total counts every scenario whose type mentions rec2 or aligned, known category or not.
	Total int
}

// Alignment classifies how the two-order recommendation relates to the optimal bundle of each round.
func Alignment(md models.Metadata) (AlignmentReport, error) {
	var report AlignmentReport
	rounds := make(map[string][]int)

	for _, key := range md.OptimalScenarios.Keys() {
		scenario, _ := md.OptimalScenarios.Get(key)
		if !strings.Contains(scenario.Type, "rec2") && !strings.Contains(scenario.Type, "aligned") {
			continue
		}
		round, err := scenario.RoundNumber(key)
		if err != nil {
			return report, err
		}
		rounds[scenario.Type] = append(rounds[scenario.Type], round)
		report.Total++
	}

	for _, category := range AlignmentCategories {
		r, ok := rounds[category]
		if !ok {
			continue
		}
		report.Groups = append(report.Groups, AlignmentGroup{
			Type:        category,
			Description: alignmentDescriptions[category],
			Count:       len(r),
			Rounds:      r,
		})
	}
	return report, nil
}
