package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscore/internal/model"
)

// LeadDatabaseTitle is the title given to databases created by EnsureLeadDatabase.
const LeadDatabaseTitle = "Scored Leads"

// EnsureLeadDatabase creates a lead database under the given parent page and
// returns its ID. Callers that already have a database skip this and pass
// their ID to PushLeads directly.
func EnsureLeadDatabase(ctx context.Context, c Client, parentPageID string) (string, error) {
	req := &notionapi.DatabaseCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(parentPageID),
		},
		Title: []notionapi.RichText{
			{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: LeadDatabaseTitle}},
		},
		Properties: leadDatabaseProperties(),
	}

	db, err := c.CreateDatabase(ctx, req)
	if err != nil {
		return "", eris.Wrap(err, "notion: create lead database")
	}
	return db.ID.String(), nil
}

// leadDatabaseProperties builds the schema for a lead database. Intent is a
// select so Notion renders the usual green/yellow/red pills.
func leadDatabaseProperties() notionapi.PropertyConfigs {
	richText := notionapi.RichTextPropertyConfig{Type: notionapi.PropertyConfigTypeRichText}
	return notionapi.PropertyConfigs{
		"Name":      notionapi.TitlePropertyConfig{Type: notionapi.PropertyConfigTypeTitle},
		"Role":      richText,
		"Company":   richText,
		"Industry":  richText,
		"Location":  richText,
		"Reasoning": richText,
		"Score": notionapi.NumberPropertyConfig{
			Type:   notionapi.PropertyConfigTypeNumber,
			Number: notionapi.NumberFormat{Format: notionapi.FormatNumber},
		},
		"Intent": notionapi.SelectPropertyConfig{
			Type: notionapi.PropertyConfigTypeSelect,
			Select: notionapi.Select{
				Options: []notionapi.Option{
					{Name: string(model.IntentHigh), Color: notionapi.ColorGreen},
					{Name: string(model.IntentMedium), Color: notionapi.ColorYellow},
					{Name: string(model.IntentLow), Color: notionapi.ColorRed},
				},
			},
		},
	}
}

// PushLeads creates one page per scored lead in the given database. Leads
// without a persisted score are skipped. Returns the number of pages created;
// on error the count covers the pages created before the failure.
func PushLeads(ctx context.Context, c Client, dbID string, leads []model.Lead) (int, error) {
	pushed := 0
	for i := range leads {
		lead := &leads[i]
		if !lead.Scored() {
			continue
		}
		if ctx.Err() != nil {
			return pushed, eris.Wrap(ctx.Err(), "notion: push leads cancelled")
		}

		req := &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(dbID),
			},
			Properties: leadPageProperties(lead),
		}

		if _, err := c.CreatePage(ctx, req); err != nil {
			return pushed, eris.Wrap(err, fmt.Sprintf("notion: push lead %s", lead.Name))
		}
		pushed++
	}
	return pushed, nil
}

// leadPageProperties converts a scored lead to Notion page properties.
// The lead name becomes the title; empty text fields are omitted.
func leadPageProperties(lead *model.Lead) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: lead.Name}},
			},
		},
		"Score": notionapi.NumberProperty{
			Type:   notionapi.PropertyTypeNumber,
			Number: float64(*lead.Score),
		},
	}

	if lead.Intent != nil {
		props["Intent"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: string(*lead.Intent)},
		}
	}

	text := map[string]string{
		"Role":     lead.Role,
		"Company":  lead.Company,
		"Industry": lead.Industry,
		"Location": lead.Location,
	}
	if lead.Reasoning != nil {
		text["Reasoning"] = *lead.Reasoning
	}
	for name, value := range text {
		if value == "" {
			continue
		}
		props[name] = notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: value}},
			},
		}
	}

	return props
}
