package leadfile

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadscore/internal/model"
)

// ParseXLSX reads leads from the first sheet of an XLSX workbook. The first
// row must satisfy the same header contract as ParseCSV.
func ParseXLSX(data []byte) ([]model.Lead, []RowError, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, nil, eris.Wrap(err, "leadfile: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, nil, eris.New("leadfile: workbook has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil, eris.New("leadfile: empty sheet")
	}

	colIdx := mapColumns(rowToStrings(sheet.Rows[0]))
	if missing := missingColumns(colIdx); len(missing) > 0 {
		return nil, nil, eris.Errorf("leadfile: missing required columns: %s", strings.Join(missing, ", "))
	}

	var (
		leads   []model.Lead
		rowErrs []RowError
	)
	for i := 1; i < len(sheet.Rows); i++ {
		cells := rowToStrings(sheet.Rows[i])
		if blankRow(cells) {
			continue
		}

		lead, err := buildLead(cells, colIdx)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: i + 1, Err: err})
			continue
		}
		leads = append(leads, lead)
	}

	return leads, rowErrs, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// blankRow reports whether every cell is empty. Excel keeps trailing rows a
// user once touched, so these show up routinely.
func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
