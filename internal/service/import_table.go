package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/Hajjjaj37/gestion-pole-Dia/internal/model"
)

// TableFormat encoding of an uploaded timetable.
type TableFormat string

const (
	FormatCSV  TableFormat = "csv"
	FormatXLSX TableFormat = "xlsx"
	FormatXLS  TableFormat = "xls"
	FormatHTML TableFormat = "html"
)

// FormatFromFilename picks the table format from a file extension.
func FormatFromFilename(name string) (TableFormat, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt", "":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrImportUnsupportedFormat, filepath.Ext(name))
	}
}

// ── header ──

type importColumn int

const (
	colDay importColumn = iota
	colClass
	colSessionTemplate
	colTrainer
	colModule
	colRoom
	columnCount
)

var columnNames = [columnCount]string{"day", "class_id", "session_template_id", "trainer_id", "module_id", "room_id"}

// header names are matched lower-cased; the French names are the institute's
// historical export format.
var headerAliases = map[string]importColumn{
	"jour":                colDay,
	"day":                 colDay,
	"classe id":           colClass,
	"class_id":            colClass,
	"séance id":           colSessionTemplate,
	"seance id":           colSessionTemplate,
	"session_template_id": colSessionTemplate,
	"formateur id":        colTrainer,
	"trainer_id":          colTrainer,
	"module id":           colModule,
	"module_id":           colModule,
	"salle id":            colRoom,
	"room_id":             colRoom,
}

const utf8BOM = "\ufeff"

// resolveHeader maps each required column to its index in the header row.
func resolveHeader(header []string) ([columnCount]int, error) {
	var index [columnCount]int
	for i := range index {
		index[i] = -1
	}

	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		col, ok := headerAliases[strings.ToLower(strings.TrimSpace(name))]
		if ok && index[col] < 0 {
			index[col] = i
		}
	}

	var missing []string
	for col, at := range index {
		if at < 0 {
			missing = append(missing, columnNames[col])
		}
	}
	if len(missing) > 0 {
		return index, fmt.Errorf("%w: missing %s", ErrImportBadHeader, strings.Join(missing, ", "))
	}
	return index, nil
}

// ── rows ──

// gridRow one physical row of the table. err is set when the row itself
// could not be read.
type gridRow struct {
	cells []string
	err   error
}

func (r gridRow) blank() bool {
	if r.err != nil {
		return false
	}
	for _, c := range r.cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// importRow one data row, numbered from 1 in file order. Exactly one of
// Proposal and Err is meaningful.
type importRow struct {
	Number   int
	ClassID  string
	Proposal proposal
	Err      error
}

// parseImportTable turns raw into numbered data rows. Table-level problems
// (unreadable file, bad header, too many rows) fail the whole call; cell
// problems are recorded on the row.
func parseImportTable(raw []byte, format TableFormat, maxRows int) ([]importRow, error) {
	grid, err := readGrid(raw, format)
	if err != nil {
		return nil, err
	}

	// skip leading blank rows before the header
	start := 0
	for start < len(grid) && grid[start].blank() {
		start++
	}
	if start == len(grid) {
		return nil, ErrImportEmpty
	}
	if grid[start].err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportBadHeader, grid[start].err)
	}

	index, err := resolveHeader(grid[start].cells)
	if err != nil {
		return nil, err
	}

	var rows []importRow
	for _, g := range grid[start+1:] {
		if g.blank() {
			continue
		}
		if len(rows) == maxRows {
			return nil, fmt.Errorf("%w: more than %d rows", ErrImportTooManyRows, maxRows)
		}
		rows = append(rows, toImportRow(len(rows)+1, g, index))
	}
	if len(rows) == 0 {
		return nil, ErrImportEmpty
	}
	return rows, nil
}

func toImportRow(number int, g gridRow, index [columnCount]int) importRow {
	row := importRow{Number: number}
	if g.err != nil {
		row.Err = g.err
		return row
	}

	var values [columnCount]string
	for col, at := range index {
		if at >= len(g.cells) {
			row.Err = fmt.Errorf("row has %d fields, column %s is missing", len(g.cells), columnNames[col])
			return row
		}
		v := strings.TrimSpace(g.cells[at])
		if v == "" {
			row.Err = fmt.Errorf("empty %s", columnNames[col])
			return row
		}
		values[col] = v
	}

	day, err := model.ParseWeekday(values[colDay])
	if err != nil {
		row.Err = err
		return row
	}

	row.ClassID = values[colClass]
	row.Proposal = proposal{
		Day:               day,
		SessionTemplateID: values[colSessionTemplate],
		TrainerID:         values[colTrainer],
		ModuleID:          values[colModule],
		ClassID:           values[colClass],
		RoomID:            values[colRoom],
	}
	return row
}

// ── readers ──

func readGrid(raw []byte, format TableFormat) ([]gridRow, error) {
	switch format {
	case FormatCSV, "":
		return readCSV(raw)
	case FormatXLSX:
		return readXLSX(raw)
	case FormatXLS:
		return readXLS(raw)
	case FormatHTML:
		return readHTML(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrImportUnsupportedFormat, format)
	}
}

func readCSV(raw []byte) ([]gridRow, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var grid []gridRow
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				grid = append(grid, gridRow{err: parseErr.Err})
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
		}
		grid = append(grid, gridRow{cells: record})
	}
	return grid, nil
}

func readXLSX(raw []byte) ([]gridRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportEmpty
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}

	grid := make([]gridRow, 0, len(rows))
	for _, cells := range rows {
		grid = append(grid, gridRow{cells: cells})
	}
	return grid, nil
}

func readXLS(raw []byte) ([]gridRow, error) {
	wb, err := xls.OpenReader(bytes.NewReader(raw), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, ErrImportEmpty
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrImportEmpty
	}

	grid := make([]gridRow, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, gridRow{})
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		grid = append(grid, gridRow{cells: cells})
	}
	return grid, nil
}

// readHTML reads the first <table> of the document.
func readHTML(raw []byte) ([]gridRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportUnreadable, err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrImportEmpty
	}

	var grid []gridRow
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		grid = append(grid, gridRow{cells: cells})
	})
	return grid, nil
}
