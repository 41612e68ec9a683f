package export

// Table is an ordered tabular payload ready for rendering. Columns fixes
// the order; every row must carry one cell per column.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// Renderer serialises a table into a downloadable document.
type Renderer interface {
	Render(t Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat resolves a renderer by format name. An empty format means CSV.
func ForFormat(format string) (Renderer, bool) {
	switch format {
	case "", "csv":
		return CSVRenderer{}, true
	case "pdf":
		return PDFRenderer{}, true
	default:
		return nil, false
	}
}
