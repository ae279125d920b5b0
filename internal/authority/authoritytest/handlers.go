package authoritytest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Handlers provides reusable authority responses.
type Handlers struct{}

// JSON returns a handler that responds with JSON.
func (Handlers) JSON(code int, data any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(data)
	}
}

// Cart answers a cart mutation with the given status envelope.
func (h Handlers) Cart(status string, count int, message string) http.HandlerFunc {
	body := map[string]any{"status": status, "cart_count": count}
	if message != "" {
		body["message"] = message
	}
	return h.JSON(http.StatusOK, body)
}

// Replacement answers with a single card fragment.
func (h Handlers) Replacement(fragment string) http.HandlerFunc {
	return h.JSON(http.StatusOK, map[string]string{"status": "success", "html": fragment})
}

// Rejection answers with a non-success status and message.
func (h Handlers) Rejection(status, message string) http.HandlerFunc {
	return h.JSON(http.StatusOK, map[string]string{"status": status, "message": message})
}

// HTML returns a handler that serves a document.
func (Handlers) HTML(code int, doc string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(code)
		io.WriteString(w, doc)
	}
}

// Text returns a handler that responds with plain text.
func (Handlers) Text(code int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(code)
		io.WriteString(w, body)
	}
}

// Status returns a handler that responds with just a status code.
func (Handlers) Status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

// Delayed wraps h with simulated latency.
func (Handlers) Delayed(delay time.Duration, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		h(w, r)
	}
}

// Card renders a card fragment in the markup the catalog uses.
func Card(id, title string, price float64) string {
	return fmt.Sprintf(
		`<div class="card" data-id="%s" data-title="%s" data-price="%.2f" data-vendor="Meevyy" data-img="/static/%s.png">`+
			`<h5>%s</h5>`+
			`<button class="cart-toggle" data-id="%s">+</button>`+
			`<button class="compare-btn" data-id="%s">Compare</button>`+
			`</div>`,
		id, title, price, id, title, id, id)
}

// Page renders a dashboard with one section per key of sections, in the
// order given by names.
func Page(cartCount int, names []string, sections map[string][]string) string {
	doc := fmt.Sprintf(`<html><body><nav><span id="nav-cart-count">%d</span></nav>`, cartCount)
	for _, name := range names {
		doc += fmt.Sprintf(`<div class="row" data-section="%s">`, name)
		for _, card := range sections[name] {
			doc += card
		}
		doc += `</div>`
	}
	return doc + `</body></html>`
}

func readAll(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}
