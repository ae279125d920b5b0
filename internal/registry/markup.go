package registry

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/artpar/shelf/internal/core"
)

// Markup contract shared with the remote authority's card template.
const (
	ClassCard       = "card"
	ClassCartToggle = "cart-toggle"
	ClassRemoveMode = "remove-mode"
	ClassCompare    = "compare-btn"
	ClassActive     = "active"

	AttrID      = "data-id"
	AttrTitle   = "data-title"
	AttrPrice   = "data-price"
	AttrVendor  = "data-vendor"
	AttrImage   = "data-img"
	AttrSection = "data-section"

	CartCountID = "nav-cart-count"
)

// ParseCard reads the first card element of an HTML fragment.
func ParseCard(fragment string) (core.Card, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return core.Card{}, fmt.Errorf("parse card markup: %w", err)
	}

	for _, n := range nodes {
		if el := findFirst(n, isCard); el != nil {
			return cardFromNode(el)
		}
	}
	return core.Card{}, ErrNoCard
}

// ParsePage reads every section container and its cards from a full page,
// along with the cart badge.
func ParsePage(document string) (Page, error) {
	doc, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return Page{}, fmt.Errorf("parse page markup: %w", err)
	}

	var page Page
	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}

		if attr(n, "id") == CartCountID {
			if count, err := strconv.Atoi(strings.TrimSpace(textContent(n))); err == nil {
				page.CartCount = count
				page.HasCartCount = true
			}
			return false
		}

		name, ok := attrOK(n, AttrSection)
		if !ok {
			return true
		}

		section := Section{Name: name}
		var cardErr error
		walk(n, func(c *html.Node) bool {
			if cardErr != nil || !isCard(c) {
				return cardErr == nil
			}
			card, err := cardFromNode(c)
			if err != nil {
				cardErr = fmt.Errorf("section %q: %w", name, err)
				return false
			}
			section.Cards = append(section.Cards, card)
			return false
		})
		if cardErr != nil {
			err = cardErr
			return false
		}

		page.Sections = append(page.Sections, section)
		return false
	})
	if err != nil {
		return Page{}, err
	}

	return page, nil
}

func cardFromNode(n *html.Node) (core.Card, error) {
	card := core.Card{
		ID:       core.ProductID(strings.TrimSpace(attr(n, AttrID))),
		Title:    attr(n, AttrTitle),
		Vendor:   attr(n, AttrVendor),
		ImageURL: attr(n, AttrImage),
	}

	if raw := strings.TrimSpace(attr(n, AttrPrice)); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return core.Card{}, fmt.Errorf("card %s: invalid price %q", card.ID, raw)
		}
		card.Price = price
	}

	if btn := findFirst(n, withClass(ClassCartToggle)); btn != nil && hasClass(btn, ClassRemoveMode) {
		card.Mode = core.ModeRemovable
	}
	if btn := findFirst(n, withClass(ClassCompare)); btn != nil && hasClass(btn, ClassActive) {
		card.Compared = true
	}

	if err := card.Validate(); err != nil {
		return core.Card{}, err
	}
	return card, nil
}

func isCard(n *html.Node) bool {
	if n.Type != html.ElementNode || !hasClass(n, ClassCard) {
		return false
	}
	_, ok := attrOK(n, AttrID)
	return ok
}

func withClass(class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasClass(n, class)
	}
}

// walk visits n and its descendants depth-first. Returning false from fn
// skips the children of the visited node.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}
