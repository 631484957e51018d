package models

const (
	CityEmeryville = "Emeryville"
	CityBerkeley   = "Berkeley"
	CityOakland    = "Oakland"
	CityPiedmont   = "Piedmont"
	CityUnknown    = "Unknown"

	PhaseBaseline = "Baseline"
	PhaseAssisted = "Assisted"
	PhaseTransfer = "Transfer"

	AlignmentAligned  = "aligned"
	AlignmentRec2Opt1 = "rec2_opt1"
	AlignmentRec2Opt3 = "rec2_opt3"

	TotalRounds         = 20
	OrdersPerRound      = 4
	ExpectedOrders      = TotalRounds * OrdersPerRound
	RotationCycles      = 5
	RecommendedPerRound = 2
	FirstAssistedRound  = 6
	LastAssistedRound   = 15

	// DefaultFirstOrderSuffix marks the representative order of a round ("r07_A").
	DefaultFirstOrderSuffix = "_A"
)

// Cities is the rotation cycle, in order.
var Cities = []string{CityEmeryville, CityBerkeley, CityOakland, CityPiedmont}

// RoundRange is an inclusive span of rounds.
type RoundRange struct {
	Name  string
	First int
	Last  int
}

func (r RoundRange) Contains(round int) bool {
	return round >= r.First && round <= r.Last
}

func (r RoundRange) Len() int {
	return r.Last - r.First + 1
}

// PhaseRanges are the fixed experiment phases, independent of metadata.phases.
var PhaseRanges = []RoundRange{
	{Name: PhaseBaseline, First: 1, Last: 5},
	{Name: PhaseAssisted, First: FirstAssistedRound, Last: LastAssistedRound},
	{Name: PhaseTransfer, First: 16, Last: TotalRounds},
}

// PhaseOf returns the fixed phase name of round, or "" outside 1..20.
func PhaseOf(round int) string {
	for _, r := range PhaseRanges {
		if r.Contains(round) {
			return r.Name
		}
	}
	return ""
}

// ExpectedRotation is the per-round city sequence for rounds 1..20.
func ExpectedRotation() []string {
	out := make([]string, 0, TotalRounds)
	for i := 0; i < RotationCycles; i++ {
		out = append(out, Cities...)
	}
	return out
}
