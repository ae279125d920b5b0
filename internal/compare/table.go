package compare

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/artpar/shelf/internal/core"
)

// Column is one compared product, resolved from its card at render time.
type Column struct {
	ID       core.ProductID
	Title    string
	ImageURL string
	Price    string
	Vendor   string
}

// Table is the side-by-side comparison, one column per product in
// selection order.
type Table struct {
	Columns []Column
}

// Empty reports whether no product could be resolved.
func (t Table) Empty() bool {
	return len(t.Columns) == 0
}

// Headers returns the header row.
func (t Table) Headers() []string {
	headers := []string{"Feature"}
	for _, c := range t.Columns {
		headers = append(headers, c.Title)
	}
	return headers
}

// Rows returns the feature rows: image, price, vendor.
func (t Table) Rows() [][]string {
	image := []string{"Image"}
	price := []string{"Price"}
	vendor := []string{"Vendor"}
	for _, c := range t.Columns {
		image = append(image, c.ImageURL)
		price = append(price, c.Price)
		vendor = append(vendor, c.Vendor)
	}
	return [][]string{image, price, vendor}
}

// Text renders the table as plain bordered text.
func (t Table) Text() string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers()...).
		Rows(t.Rows()...).
		String()
}

func columnFor(card core.Card) Column {
	return Column{
		ID:       card.ID,
		Title:    card.Title,
		ImageURL: card.ImageURL,
		Price:    card.PriceText(),
		Vendor:   card.Vendor,
	}
}
