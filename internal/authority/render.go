package authority

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
)

const cardTemplate = `{{define "card"}}<div class="card" data-id="{{.ID}}" data-title="{{.Title}}" data-price="{{price .Price}}" data-vendor="{{.Vendor}}" data-img="{{.ImageURL}}">
  <img src="{{.ImageURL}}" alt="{{.Title}}">
  <h5>{{.Title}}</h5>
  <p class="price">₹{{price .Price}}</p>
  <p class="vendor">{{.Vendor}}</p>
  <button class="cart-toggle{{if .InCart}} remove-mode{{end}}" data-id="{{.ID}}">{{if .InCart}}-{{else}}+{{end}}</button>
  <button class="compare-btn" data-id="{{.ID}}">Compare</button>
  <button class="dislike-btn" data-id="{{.ID}}">Not for me</button>
</div>{{end}}`

const pageTemplate = `<!DOCTYPE html>
<html>
<head><title>Dashboard</title></head>
<body>
<nav><a href="/cart">Cart <span id="nav-cart-count">{{.CartCount}}</span></a></nav>
{{range .Sections}}<section>
  <h3>{{.Title}}</h3>
  <div class="row" data-section="{{.Name}}">
{{range .Cards}}{{template "card" .}}
{{end}}  </div>
</section>
{{end}}</body>
</html>`

// CardView is a product as rendered for one shopper.
type CardView struct {
	Product
	InCart bool
}

// SectionView is one dashboard row.
type SectionView struct {
	Name  string
	Title string
	Cards []CardView
}

// PageView is the whole dashboard.
type PageView struct {
	CartCount int
	Sections  []SectionView
}

// Renderer produces the dashboard and card markup.
type Renderer struct {
	card *template.Template
	page *template.Template
}

// NewRenderer parses the templates.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"price": func(p float64) string { return strconv.FormatFloat(p, 'f', 2, 64) },
	}

	card, err := template.New("fragments").Funcs(funcs).Parse(cardTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse card template: %w", err)
	}
	page, err := template.Must(card.Clone()).New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	return &Renderer{card: card, page: page}, nil
}

// Card renders one card fragment.
func (r *Renderer) Card(v CardView) (string, error) {
	var buf bytes.Buffer
	if err := r.card.ExecuteTemplate(&buf, "card", v); err != nil {
		return "", fmt.Errorf("render card %s: %w", v.ID, err)
	}
	return buf.String(), nil
}

// Page renders the dashboard document.
func (r *Renderer) Page(v PageView) (string, error) {
	var buf bytes.Buffer
	if err := r.page.ExecuteTemplate(&buf, "page", v); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return buf.String(), nil
}
