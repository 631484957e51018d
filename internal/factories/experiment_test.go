package factories

import (
	"testing"

	"github.com/chrisdamba/expcheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDocumentIsCanonical(t *testing.T) {
	ef := &ExperimentFactory{}
	doc := ef.CreateDocument()

	require.Len(t, doc.Orders, models.ExpectedOrders)
	for round := 1; round <= models.TotalRounds; round++ {
		orders := doc.OrdersInRound(round)
		require.Len(t, orders, models.OrdersPerRound, "round %d", round)
		assert.Equal(t, CityForRound(round), orders[0]["city"])
	}
	assert.Equal(t, []string{"r06_A", "r06_B"}, []string{
		doc.OrdersInRound(6)[0]["id"].(string),
		doc.OrdersInRound(6)[1]["id"].(string),
	})

	ds, err := doc.Dataset()
	require.NoError(t, err)
	assert.Equal(t, models.Cities, ds.Metadata.CityRotation)
	assert.Equal(t, []string{"phase_a", "phase_b", "phase_c"}, ds.Metadata.Phases.Keys())
}

func TestScenarioType(t *testing.T) {
	assert.Equal(t, "baseline", ScenarioType(3, 3))
	assert.Equal(t, models.AlignmentAligned, ScenarioType(6, 2))
	assert.Equal(t, models.AlignmentRec2Opt1, ScenarioType(7, 1))
	assert.Equal(t, models.AlignmentRec2Opt3, ScenarioType(8, 3))
	assert.Equal(t, "transfer", ScenarioType(16, 2))
}

func TestDocumentOmitsKeys(t *testing.T) {
	doc := &Document{OmitOrders: true}

	ds, err := doc.Dataset()
	require.NoError(t, err)
	assert.False(t, ds.HasKey("orders"))
	assert.False(t, ds.HasKey("metadata"))
}
