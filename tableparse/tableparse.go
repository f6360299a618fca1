// Package tableparse converts an HTML table fragment into row records,
// tolerating merged cells and nested tables.
package tableparse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/gleanerhq/gleaner/models"
)

// Parse reads the table fragment and emits one record per non-skipped data
// row, pairing each header with the cell at the same position. Rows shorter
// than the header set are padded with empty strings; extra cells are
// ignored. Zero resolved headers is not an error: the result is simply
// empty with all-zero metadata.
func Parse(tableHTML string, spec models.TableSpec) ([]map[string]string, models.TableMetadata, error) {
	spec.Defaults()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return nil, models.TableMetadata{}, err
	}

	rowMatcher, err := cascadia.Compile(spec.RowSelector)
	if err != nil {
		return nil, models.TableMetadata{}, err
	}
	cellMatcher, err := cascadia.Compile(spec.CellSelector)
	if err != nil {
		return nil, models.TableMetadata{}, err
	}

	headers, err := resolveHeaders(doc, spec, rowMatcher, cellMatcher)
	if err != nil {
		return nil, models.TableMetadata{}, err
	}
	if len(headers) == 0 {
		return []map[string]string{}, models.TableMetadata{}, nil
	}

	// Data rows start after the in-row header when one was used.
	start := 0
	if spec.HeaderRowIndex != nil {
		start = *spec.HeaderRowIndex + 1
	}

	skip := make(map[int]struct{}, len(spec.SkipRows))
	for _, i := range spec.SkipRows {
		skip[i] = struct{}{}
	}

	rows := doc.FindMatcher(rowMatcher)
	records := []map[string]string{}
	for i := start; i < rows.Length(); i++ {
		// Skip indices refer to the original row position.
		if _, skipped := skip[i]; skipped {
			continue
		}
		cells := rows.Eq(i).FindMatcher(cellMatcher)
		record := make(map[string]string, len(headers))
		for col, header := range headers {
			if col < cells.Length() {
				record[header] = cellText(cells.Eq(col))
			} else {
				record[header] = ""
			}
		}
		records = append(records, record)
	}

	meta := models.TableMetadata{
		RowsParsed: len(records),
		Columns:    len(headers),
	}
	if err := fillCellMetadata(doc, spec, &meta); err != nil {
		return nil, models.TableMetadata{}, err
	}
	return records, meta, nil
}

// resolveHeaders reads header names either from a row inside the row set
// (HeaderRowIndex) or from the dedicated header selector. The index path
// takes precedence whenever it is set.
func resolveHeaders(doc *goquery.Document, spec models.TableSpec, rowMatcher, cellMatcher goquery.Matcher) ([]string, error) {
	var headers []string

	if spec.HeaderRowIndex != nil {
		rows := doc.FindMatcher(rowMatcher)
		if *spec.HeaderRowIndex < rows.Length() {
			rows.Eq(*spec.HeaderRowIndex).FindMatcher(cellMatcher).Each(func(_ int, cell *goquery.Selection) {
				headers = append(headers, cellText(cell))
			})
		}
		return headers, nil
	}

	headerMatcher, err := cascadia.Compile(spec.HeadersSelector)
	if err != nil {
		return nil, err
	}
	doc.FindMatcher(headerMatcher).Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, cellText(cell))
	})
	return headers, nil
}

// fillCellMetadata scans the data cells for span attributes and directly
// nested tables. Only direct-child tables are counted so a multiply-nested
// table is not counted once per ancestor cell.
func fillCellMetadata(doc *goquery.Document, spec models.TableSpec, meta *models.TableMetadata) error {
	colspan, err := cascadia.Compile(spec.RowSelector + " " + spec.CellSelector + "[colspan]")
	if err != nil {
		return err
	}
	rowspan, err := cascadia.Compile(spec.RowSelector + " " + spec.CellSelector + "[rowspan]")
	if err != nil {
		return err
	}
	meta.HasMergedCells = doc.FindMatcher(colspan).Length() > 0 || doc.FindMatcher(rowspan).Length() > 0

	cells, err := cascadia.Compile(spec.RowSelector + " " + spec.CellSelector)
	if err != nil {
		return err
	}
	doc.FindMatcher(cells).Each(func(_ int, cell *goquery.Selection) {
		meta.NestedTablesFound += cell.ChildrenFiltered("table").Length()
	})
	return nil
}

// cellText flattens all descendant text of a cell, so content inside a
// nested table ends up in the parent cell's value.
func cellText(cell *goquery.Selection) string {
	var parts []string
	for _, node := range cell.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
