// Package leadfile parses and writes lead files in the formats collaborators
// actually send: CSV (optionally in a legacy CRM charset), XLSX, and files
// pulled from an FTP drop zone.
package leadfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/leadscore/internal/model"
)

// importColumns is the required import header. Column order is free and
// extra columns are ignored.
var importColumns = []string{"name", "role", "company", "industry", "location", "linkedin_bio"}

// exportHeader is the scored-lead export schema.
var exportHeader = []string{"Name", "Role", "Company", "Industry", "Location", "Intent", "Score", "Reasoning"}

// CSVOptions configures the CSV lead parser.
type CSVOptions struct {
	// Charset names a legacy encoding (htmlindex name, e.g. "windows-1252")
	// to decode before parsing. Empty means UTF-8.
	Charset string
}

// RowError records a data problem on a single row. The file as a whole still
// parses; callers decide whether partial imports are acceptable.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// ParseCSV reads leads from a CSV stream. The header row must contain the
// import columns (any order, extra columns ignored); a UTF-8 BOM is
// tolerated. Rows that cannot become a lead are reported as RowErrors
// without failing the parse.
func ParseCSV(r io.Reader, opts CSVOptions) ([]model.Lead, []RowError, error) {
	if opts.Charset != "" {
		enc, err := htmlindex.Get(opts.Charset)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "leadfile: unsupported charset %q", opts.Charset)
		}
		r = enc.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(skipBOM(r))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, eris.New("leadfile: empty file")
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "leadfile: read header")
	}

	colIdx := mapColumns(header)
	if missing := missingColumns(colIdx); len(missing) > 0 {
		return nil, nil, eris.Errorf("leadfile: missing required columns: %s", strings.Join(missing, ", "))
	}

	var (
		leads   []model.Lead
		rowErrs []RowError
	)
	line := 1
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}

		lead, err := buildLead(record, colIdx)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}
		leads = append(leads, lead)
	}

	return leads, rowErrs, nil
}

// WriteCSV writes leads in the export schema. Callers pass the canonical
// scored set; unscored fields come out as empty cells.
func WriteCSV(w io.Writer, leads []model.Lead) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeader); err != nil {
		return eris.Wrap(err, "leadfile: write header")
	}
	for i := range leads {
		l := &leads[i]
		intent, score, reasoning := "", "", ""
		if l.Intent != nil {
			intent = string(*l.Intent)
		}
		if l.Score != nil {
			score = strconv.Itoa(*l.Score)
		}
		if l.Reasoning != nil {
			reasoning = *l.Reasoning
		}
		row := []string{l.Name, l.Role, l.Company, l.Industry, l.Location, intent, score, reasoning}
		if err := writer.Write(row); err != nil {
			return eris.Wrap(err, "leadfile: write row")
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return eris.Wrap(err, "leadfile: flush")
	}
	return nil
}

// skipBOM discards a leading UTF-8 byte order mark. Excel prepends one to
// CSV saves.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	return br
}

// mapColumns builds a case-insensitive column name to index map.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

func missingColumns(colIdx map[string]int) []string {
	var missing []string
	for _, col := range importColumns {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// getCol gets a column value by name, returning empty string if absent.
func getCol(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// buildLead maps one record to a Lead. A row with neither a name nor a
// company has no identity and is rejected.
func buildLead(record []string, colIdx map[string]int) (model.Lead, error) {
	lead := model.Lead{
		Name:        getCol(record, colIdx, "name"),
		Role:        getCol(record, colIdx, "role"),
		Company:     getCol(record, colIdx, "company"),
		Industry:    getCol(record, colIdx, "industry"),
		Location:    getCol(record, colIdx, "location"),
		LinkedInBio: getCol(record, colIdx, "linkedin_bio"),
	}
	if lead.Name == "" && lead.Company == "" {
		return model.Lead{}, eris.New("no name or company")
	}
	return lead, nil
}
