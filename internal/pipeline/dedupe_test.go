package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscore/internal/model"
)

func intPtr(v int) *int { return &v }

func leadRow(id, name, company string, seq int64, created time.Time) model.Lead {
	return model.Lead{
		ID:        id,
		Name:      name,
		Company:   company,
		Seq:       seq,
		CreatedAt: created,
	}
}

func scoredRow(id, name, company string, seq int64, created time.Time, score int) model.Lead {
	lead := leadRow(id, name, company, seq, created)
	lead.Score = intPtr(score)
	return lead
}

func TestSelectCanonical_LatestCreatedWins(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	leads := []model.Lead{
		leadRow("v1", "Ava Patel", "FlowMetrics", 1, t0),
		leadRow("v2", "Ava Patel", "FlowMetrics", 2, t0.Add(time.Hour)),
	}

	out := SelectCanonical(leads, false)
	require.Len(t, out, 1)
	assert.Equal(t, "v2", out[0].ID)
}

func TestSelectCanonical_CreatedAtTieBreaksOnSeq(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Bulk imports share one created_at; the later insertion wins.
	leads := []model.Lead{
		leadRow("v1", "Ava Patel", "FlowMetrics", 7, t0),
		leadRow("v2", "Ava Patel", "FlowMetrics", 8, t0),
	}

	out := SelectCanonical(leads, false)
	require.Len(t, out, 1)
	assert.Equal(t, "v2", out[0].ID)
}

func TestSelectCanonical_IdentityIsCaseSensitive(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	leads := []model.Lead{
		leadRow("a", "Ava Patel", "FlowMetrics", 1, t0),
		leadRow("b", "Ava Patel", "flowmetrics", 2, t0),
		leadRow("c", "ava patel", "FlowMetrics", 3, t0),
	}

	out := SelectCanonical(leads, false)
	assert.Len(t, out, 3)
}

func TestSelectCanonical_ScoredOnlyFiltersBeforeGrouping(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// The newer row is unscored, so it cannot shadow the scored older row
	// in the results view.
	leads := []model.Lead{
		scoredRow("scored", "Ava Patel", "FlowMetrics", 1, t0, 85),
		leadRow("unscored", "Ava Patel", "FlowMetrics", 2, t0.Add(time.Hour)),
	}

	scored := SelectCanonical(leads, true)
	require.Len(t, scored, 1)
	assert.Equal(t, "scored", scored[0].ID)

	// Candidate selection sees everything and picks the newer row.
	all := SelectCanonical(leads, false)
	require.Len(t, all, 1)
	assert.Equal(t, "unscored", all[0].ID)
}

func TestSelectCanonical_KeepsFirstAppearanceOrder(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	leads := []model.Lead{
		leadRow("a1", "Ava Patel", "FlowMetrics", 1, t0),
		leadRow("b1", "Bob Chen", "Northwind", 2, t0),
		leadRow("a2", "Ava Patel", "FlowMetrics", 3, t0.Add(time.Minute)),
	}

	out := SelectCanonical(leads, false)
	require.Len(t, out, 2)
	assert.Equal(t, "a2", out[0].ID)
	assert.Equal(t, "b1", out[1].ID)
}

func TestSelectCanonical_Empty(t *testing.T) {
	assert.Empty(t, SelectCanonical(nil, false))
	assert.Empty(t, SelectCanonical([]model.Lead{}, true))
}

func TestScoredResults_Ordering(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	leads := []model.Lead{
		scoredRow("c", "Cara Osei", "Zenith", 1, t0, 90),
		scoredRow("a", "Ava Patel", "FlowMetrics", 2, t0, 95),
		scoredRow("b", "Bob Chen", "Northwind", 3, t0, 90),
		leadRow("d", "Dan Moore", "Umbrella", 4, t0),
	}

	out := ScoredResults(leads)
	require.Len(t, out, 3)
	// Score descending, then company, then name.
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, "c", out[2].ID)
}

func TestScoredResults_EqualScoresOrderByCompanyThenName(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	leads := []model.Lead{
		scoredRow("2", "Noah Kim", "Acme", 1, t0, 70),
		scoredRow("1", "Ava Patel", "Acme", 2, t0, 70),
		scoredRow("3", "Ava Patel", "Zenith", 3, t0, 70),
	}

	out := ScoredResults(leads)
	require.Len(t, out, 3)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "2", out[1].ID)
	assert.Equal(t, "3", out[2].ID)
}

func TestScoredResults_DedupesBeforeSorting(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// The newer scored row wins even though its score is lower.
	leads := []model.Lead{
		scoredRow("old", "Ava Patel", "FlowMetrics", 1, t0, 90),
		scoredRow("new", "Ava Patel", "FlowMetrics", 2, t0.Add(time.Hour), 40),
	}

	out := ScoredResults(leads)
	require.Len(t, out, 1)
	assert.Equal(t, "new", out[0].ID)
	assert.Equal(t, 40, *out[0].Score)
}
