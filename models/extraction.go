package models

// ExtractSpec describes which element(s) to pull out of the page and how
// to format them.
type ExtractSpec struct {
	// Selector is the CSS selector for the element(s) to extract. Required.
	Selector string `json:"selector" binding:"required"`

	// Attribute names an HTML attribute to read instead of text content
	// (e.g. "href", "src"). Empty means text content.
	Attribute string `json:"attribute,omitempty"`

	// Multiple extracts every match instead of only the first.
	Multiple bool `json:"multiple,omitempty"`

	// WaitTimeout is how long, in milliseconds, dynamic mode waits for the
	// selector to appear before giving up. Default: 5000.
	WaitTimeout int `json:"wait_timeout,omitempty" binding:"omitempty,min=0"`

	// InnerHTML returns the element's contents without its own tag.
	// Only meaningful for html output.
	InnerHTML bool `json:"inner_html,omitempty"`

	// Strip removes script/style subtrees and every attribute from the
	// html output, collapsing it to a single line.
	Strip bool `json:"strip,omitempty"`

	// ParseTable, when set, parses the extracted table fragment into records.
	ParseTable *TableSpec `json:"parse_table,omitempty"`
}

// DefaultExtractWaitTimeoutMs is the default selector wait in dynamic mode.
const DefaultExtractWaitTimeoutMs = 5000

// Defaults applies default values to unset fields.
func (e *ExtractSpec) Defaults() {
	if e.WaitTimeout == 0 {
		e.WaitTimeout = DefaultExtractWaitTimeoutMs
	}
}

// TableSpec configures the table-to-records parser.
type TableSpec struct {
	// HeadersSelector matches the header cells. Default: "thead th".
	HeadersSelector string `json:"headers_selector,omitempty"`

	// RowSelector matches the data rows. Default: "tbody tr".
	RowSelector string `json:"row_selector,omitempty"`

	// CellSelector matches the data cells within a row. Default: "td".
	CellSelector string `json:"cell_selector,omitempty"`

	// HeaderRowIndex, when set, takes the headers from that row (0-based)
	// of the row selector's matches instead of HeadersSelector. Data rows
	// then start at HeaderRowIndex+1.
	HeaderRowIndex *int `json:"header_row_index,omitempty"`

	// SkipRows lists 0-based row indices to skip. Indices refer to the
	// original row positions, before any skipping.
	SkipRows []int `json:"skip_rows,omitempty"`
}

// Defaults applies default selectors to unset fields.
func (t *TableSpec) Defaults() {
	if t.HeadersSelector == "" {
		t.HeadersSelector = "thead th"
	}
	if t.RowSelector == "" {
		t.RowSelector = "tbody tr"
	}
	if t.CellSelector == "" {
		t.CellSelector = "td"
	}
}

// ExtractionDebug reports how the extraction selector fared.
// SelectorMatched is true iff ElementsFound > 0.
type ExtractionDebug struct {
	SelectorMatched bool   `json:"selector_matched"`
	ElementsFound   int    `json:"elements_found"`
	SelectorUsed    string `json:"selector_used"`
}

// TableMetadata describes the shape of a parsed table.
type TableMetadata struct {
	// RowsParsed is the number of records emitted.
	RowsParsed int `json:"rows_parsed"`

	// Columns is the number of headers; every record has exactly this
	// many keys.
	Columns int `json:"columns"`

	// HasMergedCells is true if any data cell carries colspan or rowspan.
	HasMergedCells bool `json:"has_merged_cells"`

	// NestedTablesFound counts tables that are direct children of data cells.
	NestedTablesFound int `json:"nested_tables_found"`
}
