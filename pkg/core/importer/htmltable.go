package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"land_proforma/pkg/core/pricing"
)

// =============================================================================
// HTML PRICING GRID
// =============================================================================

// PriceRow is one parsed row of a pricing table, still in string form.
type PriceRow struct {
	Container string `json:"container"`
	Product   string `json:"product"`
	BasePrice string `json:"base_price"`
	Premium   string `json:"premium,omitempty"`
}

// Column roles recognized in the header row. Matching is substring-based so
// "Base Price ($)" and "Lot Premium" both land.
var headerRoles = []struct {
	role     string
	patterns []string
}{
	{"container", []string{"parcel", "container", "area", "phase"}},
	{"product", []string{"product", "lot type", "unit type", "plan"}},
	{"premium", []string{"premium"}},
	{"base", []string{"base price", "price", "base"}},
}

// ParsePricingTable reads an exported HTML pricing table into rows. Tables
// come out of spreadsheet exports with merged cells, so the parser builds a
// virtual grid first: spanned cells repeat their value across the covered
// slots, which keeps every data row complete.
func ParsePricingTable(tableHTML string) ([]PriceRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing table: %w", err)
	}

	grid := buildGrid(doc)
	if len(grid) == 0 {
		return nil, fmt.Errorf("pricing table has no rows")
	}

	headerIdx, columns := findHeader(grid)
	if headerIdx < 0 {
		return nil, fmt.Errorf("pricing table has no header row with product and price columns")
	}

	rows := make([]PriceRow, 0, len(grid)-headerIdx-1)
	lastContainer := ""
	for _, cells := range grid[headerIdx+1:] {
		row := PriceRow{
			Container: cellAt(cells, columns["container"]),
			Product:   cellAt(cells, columns["product"]),
			BasePrice: normalizeMoney(cellAt(cells, columns["base"])),
			Premium:   normalizeMoney(cellAt(cells, columns["premium"])),
		}

		// Section rows carry only a parcel name; their value flows down to
		// the product rows underneath.
		if row.Container != "" {
			lastContainer = row.Container
		} else {
			row.Container = lastContainer
		}
		if row.Product == "" && row.BasePrice == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// buildGrid expands the table into a rectangular grid, honoring colspan and
// rowspan. Empty cells hold a single space so occupied slots are detectable
// while filling.
func buildGrid(doc *goquery.Document) [][]string {
	trs := doc.Find("tr")
	rowCount := trs.Length()
	if rowCount == 0 {
		return nil
	}

	maxCols := 0
	trs.Each(func(_ int, tr *goquery.Selection) {
		cols := 0
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			colspan, _ := strconv.Atoi(cell.AttrOr("colspan", "1"))
			if colspan < 1 {
				colspan = 1
			}
			cols += colspan
		})
		if cols > maxCols {
			maxCols = cols
		}
	})

	grid := make([][]string, rowCount)
	for i := range grid {
		grid[i] = make([]string, maxCols)
	}

	rowIdx := 0
	trs.Each(func(_ int, tr *goquery.Selection) {
		colIdx := 0
		for colIdx < maxCols && grid[rowIdx][colIdx] != "" {
			colIdx++
		}

		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			colspan, _ := strconv.Atoi(cell.AttrOr("colspan", "1"))
			rowspan, _ := strconv.Atoi(cell.AttrOr("rowspan", "1"))
			if colspan < 1 {
				colspan = 1
			}
			if rowspan < 1 {
				rowspan = 1
			}

			text := cleanCellText(cell.Text())
			for r := 0; r < rowspan; r++ {
				for c := 0; c < colspan; c++ {
					if rowIdx+r < rowCount && colIdx+c < maxCols {
						grid[rowIdx+r][colIdx+c] = text
					}
				}
			}

			colIdx += colspan
			for colIdx < maxCols && grid[rowIdx][colIdx] != "" {
				colIdx++
			}
		})
		rowIdx++
	})
	return grid
}

// findHeader locates the first row carrying both a product and a price
// column, and maps each recognized role to its column index. Banner rows
// above the real header ("Spring 2026 Pricing") only ever match one role, so
// requiring both skips them. Missing optional columns map to -1.
func findHeader(grid [][]string) (int, map[string]int) {
	for i, cells := range grid {
		columns := map[string]int{"container": -1, "product": -1, "base": -1, "premium": -1}
		for col, cell := range cells {
			role := headerRole(cell)
			if role != "" && columns[role] == -1 {
				columns[role] = col
			}
		}
		if columns["base"] != -1 && columns["product"] != -1 {
			return i, columns
		}
	}
	return -1, nil
}

func headerRole(cell string) string {
	header := strings.ToLower(strings.TrimSpace(cell))
	if header == "" {
		return ""
	}
	for _, hr := range headerRoles {
		for _, p := range hr.patterns {
			if strings.Contains(header, p) {
				return hr.role
			}
		}
	}
	return ""
}

func cellAt(cells []string, col int) string {
	if col < 0 || col >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col])
}

func cleanCellText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "\n", " ")
	if text == "" {
		return " "
	}
	return text
}

// normalizeMoney converts spreadsheet money formatting to a plain number.
// Parentheses mean negative, dollar signs and thousand separators drop out.
// Non-numeric text passes through unchanged so the caller sees what was there.
func normalizeMoney(text string) string {
	original := text

	hasDigit := false
	for _, r := range text {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return original
	}

	isNegative := false
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		isNegative = true
		text = text[1 : len(text)-1]
	}

	text = strings.ReplaceAll(text, "$", "")
	text = strings.ReplaceAll(text, ",", "")
	text = strings.TrimSpace(text)

	for _, r := range text {
		if !((r >= '0' && r <= '9') || r == '.' || r == '-') {
			return original
		}
	}

	if isNegative && !strings.HasPrefix(text, "-") {
		text = "-" + text
	}
	return text
}

// =============================================================================
// ROW CONVERSION
// =============================================================================

// PriceLines converts parsed rows into validated price lines. Container names
// resolve through the supplied map; unknown names leave the line unattached
// rather than failing the import.
func PriceLines(rows []PriceRow, projectID string, containerIDs map[string]string) ([]*pricing.PriceLine, error) {
	lines := make([]*pricing.PriceLine, 0, len(rows))
	for i, row := range rows {
		base, err := decimal.NewFromString(row.BasePrice)
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): unreadable base price '%s'", i+1, row.Product, row.BasePrice)
		}
		premium := decimal.Zero
		if row.Premium != "" {
			premium, err = decimal.NewFromString(row.Premium)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): unreadable premium '%s'", i+1, row.Product, row.Premium)
			}
		}

		line, err := pricing.NewPriceLine(projectID, containerIDs[row.Container], row.Product, base, premium)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
