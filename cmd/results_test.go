package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscore/internal/model"
)

func TestResultsCmd_InvalidOutput(t *testing.T) {
	require.NoError(t, resultsCmd.Flags().Set("output", "xml"))
	defer resultsCmd.Flags().Set("output", "table") //nolint:errcheck

	resultsCmd.SetContext(context.Background())
	defer resultsCmd.SetContext(context.TODO())

	err := resultsCmd.RunE(resultsCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output must be table, json or csv")
}

func TestWriteLeadsTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLeadsTable(&buf, nil))
	assert.Contains(t, buf.String(), "No scored leads")
}

func TestWriteLeadsTable(t *testing.T) {
	high := model.IntentHigh
	score := 82
	reasoning := "[Rule: Decision maker role (+20)] [AI: Good fit.]"
	leads := []model.Lead{
		{
			Name:      "Ava Patel",
			Role:      "VP of Engineering at a growth-stage SaaS company",
			Company:   "FlowMetrics",
			Intent:    &high,
			Score:     &score,
			Reasoning: &reasoning,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeLeadsTable(&buf, leads))

	out := buf.String()
	assert.Contains(t, out, "Ava Patel")
	assert.Contains(t, out, "FlowMetrics")
	// Long roles are truncated to keep the columns aligned.
	assert.Contains(t, out, "VP of Engineering...")
	assert.Contains(t, out, "High")
	assert.Contains(t, out, "82")
}
