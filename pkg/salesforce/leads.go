package salesforce

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscore/internal/model"
)

// maxBatchSize is the Salesforce Collections API limit per request.
const maxBatchSize = 200

// leadSource is stamped on every pushed record so reps can tell where it came from.
const leadSource = "Lead Scoring"

// ratingForIntent maps an intent bucket to the standard Lead Rating picklist.
func ratingForIntent(intent model.Intent) string {
	switch intent {
	case model.IntentHigh:
		return "Hot"
	case model.IntentMedium:
		return "Warm"
	default:
		return "Cold"
	}
}

// leadRecord maps a scored lead to Salesforce Lead sObject fields. The full
// name goes into LastName since the import format does not split names. The
// standard Lead object has no score field, so the score rides in Description
// ahead of the reasoning.
func leadRecord(lead *model.Lead) map[string]any {
	record := map[string]any{
		"LastName":   lead.Name,
		"Company":    lead.Company,
		"LeadSource": leadSource,
	}
	if lead.Role != "" {
		record["Title"] = lead.Role
	}
	if lead.Industry != "" {
		record["Industry"] = lead.Industry
	}
	if lead.Intent != nil {
		record["Rating"] = ratingForIntent(*lead.Intent)
	}
	if lead.Score != nil {
		desc := fmt.Sprintf("Score %d/100", *lead.Score)
		if lead.Reasoning != nil && *lead.Reasoning != "" {
			desc += ". " + *lead.Reasoning
		}
		record["Description"] = desc
	}
	return record
}

// PushLeads inserts scored leads as Salesforce Lead records, split into
// batches of 200 (SF Collections API limit). Leads without a persisted score
// are skipped. Pushing the same snapshot twice creates duplicate records;
// callers decide when a push is warranted.
func PushLeads(ctx context.Context, c Client, leads []model.Lead) ([]CollectionResult, error) {
	var records []map[string]any
	for i := range leads {
		if !leads[i].Scored() {
			continue
		}
		records = append(records, leadRecord(&leads[i]))
	}
	if len(records) == 0 {
		return nil, nil
	}

	var allResults []CollectionResult

	for start := 0; start < len(records); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(records) {
			end = len(records)
		}

		results, err := c.InsertCollection(ctx, "Lead", records[start:end])
		if err != nil {
			return allResults, eris.Wrap(err, fmt.Sprintf("sf: push leads batch %d-%d", start, end))
		}
		allResults = append(allResults, results...)
	}

	return allResults, nil
}
