package remote

import "github.com/artpar/shelf/internal/core"

// Endpoint paths exposed by the remote authority.
const (
	PathAddToCart      = "/add_to_cart"
	PathRemoveFromCart = "/remove_from_cart"
	PathFeedback       = "/feedback"
	PathReplacement    = "/get_replacement_card"
	PathDashboard      = "/dashboard"
	PathCart           = "/cart"
)

// StatusSuccess is the status value of an accepted request. Any other value
// is a rejection carrying a human-readable message.
const StatusSuccess = "success"

// CartRequest is the body of the add and remove endpoints.
type CartRequest struct {
	ProductID core.ProductID `json:"product_id"`
}

// CartResult is the authority's answer to a cart mutation.
type CartResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	CartCount int    `json:"cart_count"`
}

// OK reports whether the mutation was accepted.
func (r CartResult) OK() bool {
	return r.Status == StatusSuccess
}

// FeedbackRequest records a like or dislike.
type FeedbackRequest struct {
	ProductID core.ProductID      `json:"product_id"`
	Action    core.FeedbackAction `json:"action"`
}

// ReplacementRequest asks for a card not in ExcludeIDs.
type ReplacementRequest struct {
	ExcludeIDs []core.ProductID `json:"exclude_ids"`
}

// ReplacementResult carries either a card fragment or a rejection message.
type ReplacementResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// OK reports whether a replacement card was returned.
func (r ReplacementResult) OK() bool {
	return r.Status == StatusSuccess
}

// CartItem is one line of the cart listing.
type CartItem struct {
	ID    core.ProductID `json:"id"`
	Title string         `json:"title"`
	Price float64        `json:"price"`
}

// CartContents is the authority's view of the whole cart.
type CartContents struct {
	Status    string     `json:"status"`
	Message   string     `json:"message,omitempty"`
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	CartCount int        `json:"cart_count"`
}
