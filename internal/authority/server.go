package authority

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/logging"
	"github.com/artpar/shelf/internal/remote"
)

// Response messages.
const (
	MsgAdded       = "Item added to cart successfully"
	MsgExists      = "Item is already in your cart"
	MsgNotFound    = "Product not found"
	MsgNoMore      = "No more items"
	MsgBadRequest  = "invalid request body"
	MsgBadAction   = "invalid feedback action"
	MsgInternal    = "an internal error occurred"
	StatusExists   = "exists"
	StatusNoMore   = "no_more"
	StatusError    = "error"
	maxRequestBody = 64 << 10
)

// Server is the HTTP face of the authority.
type Server struct {
	catalog  *Catalog
	store    Store
	renderer *Renderer
	metrics  *Metrics
	logger   *slog.Logger
	timeout  time.Duration
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics replaces the server's collectors.
func WithMetrics(m *Metrics) ServerOption {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s *Server) {
		s.timeout = d
	}
}

// NewServer wires the catalog and store into an HTTP server.
func NewServer(catalog *Catalog, store Store, opts ...ServerOption) (*Server, error) {
	if catalog == nil {
		return nil, errors.New("authority: catalog is required")
	}
	if store == nil {
		return nil, errors.New("authority: store is required")
	}
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		catalog:  catalog,
		store:    store,
		renderer: renderer,
		metrics:  NewMetrics(),
		logger:   logging.Discard(),
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(s.recovery)
	if s.timeout > 0 {
		r.Use(chimw.Timeout(s.timeout))
	}
	r.Use(s.requestLogging)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, remote.PathDashboard, http.StatusFound)
	})
	r.Get(remote.PathDashboard, s.dashboard)
	r.Get(remote.PathCart, s.cart)
	r.Post(remote.PathAddToCart, s.addToCart)
	r.Post(remote.PathRemoveFromCart, s.removeFromCart)
	r.Post(remote.PathFeedback, s.feedback)
	r.Post(remote.PathReplacement, s.replacement)

	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	inCart, count, err := s.cartSet(r)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	view := PageView{CartCount: count}
	for _, sp := range s.catalog.Layout() {
		sv := SectionView{Name: sp.Name, Title: sp.Title}
		for _, p := range sp.Products {
			sv.Cards = append(sv.Cards, CardView{Product: p, InCart: inCart[p.ID]})
		}
		view.Sections = append(view.Sections, sv)
	}

	doc, err := s.renderer.Page(view)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	logging.FromContext(ctx).Debug("dashboard rendered", slog.Int("sections", len(view.Sections)))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, doc)
}

func (s *Server) cart(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.CartItems(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	contents := remote.CartContents{
		Status:    remote.StatusSuccess,
		Items:     []remote.CartItem{},
		CartCount: len(ids),
	}
	for _, id := range ids {
		p, ok := s.catalog.Find(id)
		if !ok {
			continue
		}
		contents.Items = append(contents.Items, remote.CartItem{ID: p.ID, Title: p.Title, Price: p.Price})
		contents.Total += p.Price
	}
	writeJSON(w, http.StatusOK, contents)
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req remote.CartRequest
	if !s.decode(w, r, &req) {
		return
	}
	if _, ok := s.catalog.Find(req.ProductID); !ok {
		s.metrics.cartMutation("add", "not_found")
		writeJSON(w, http.StatusNotFound, remote.CartResult{Status: StatusError, Message: MsgNotFound})
		return
	}

	added, count, err := s.store.AddToCart(r.Context(), req.ProductID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	log := logging.FromContext(r.Context()).With(slog.String("product_id", req.ProductID.String()))
	if !added {
		s.metrics.cartMutation("add", StatusExists)
		log.Info("product already in cart", slog.Int("cart_count", count))
		writeJSON(w, http.StatusOK, remote.CartResult{Status: StatusExists, Message: MsgExists, CartCount: count})
		return
	}

	s.metrics.cartMutation("add", remote.StatusSuccess)
	log.Info("product added to cart", slog.Int("cart_count", count))
	writeJSON(w, http.StatusOK, remote.CartResult{Status: remote.StatusSuccess, Message: MsgAdded, CartCount: count})
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	var req remote.CartRequest
	if !s.decode(w, r, &req) {
		return
	}

	count, err := s.store.RemoveFromCart(r.Context(), req.ProductID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.metrics.cartMutation("remove", remote.StatusSuccess)
	logging.FromContext(r.Context()).Info("product removed from cart",
		slog.String("product_id", req.ProductID.String()),
		slog.Int("cart_count", count),
	)
	writeJSON(w, http.StatusOK, remote.CartResult{Status: remote.StatusSuccess, CartCount: count})
}

func (s *Server) feedback(w http.ResponseWriter, r *http.Request) {
	var req remote.FeedbackRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !req.Action.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": StatusError, "message": MsgBadAction})
		return
	}
	if _, ok := s.catalog.Find(req.ProductID); !ok {
		writeJSON(w, http.StatusOK, map[string]string{"status": StatusError, "message": MsgNotFound})
		return
	}

	in := Interaction{
		ID:        uuid.NewString(),
		ProductID: req.ProductID,
		Action:    req.Action,
		CreatedAt: time.Now(),
	}
	if err := s.store.RecordInteraction(r.Context(), in); err != nil {
		s.internalError(w, r, err)
		return
	}

	s.metrics.feedbackRecorded(string(req.Action))
	logging.FromContext(r.Context()).Info("feedback recorded",
		slog.String("product_id", req.ProductID.String()),
		slog.String("action", string(req.Action)),
	)
	writeJSON(w, http.StatusOK, map[string]string{"status": remote.StatusSuccess, "id": in.ID})
}

func (s *Server) replacement(w http.ResponseWriter, r *http.Request) {
	var req remote.ReplacementRequest
	if !s.decode(w, r, &req) {
		return
	}

	p, ok := s.catalog.Replacement(req.ExcludeIDs)
	if !ok {
		s.metrics.replacement(StatusNoMore)
		writeJSON(w, http.StatusOK, remote.ReplacementResult{Status: StatusNoMore, Message: MsgNoMore})
		return
	}

	inCart, _, err := s.cartSet(r)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	fragment, err := s.renderer.Card(CardView{Product: p, InCart: inCart[p.ID]})
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.metrics.replacement(remote.StatusSuccess)
	logging.FromContext(r.Context()).Debug("replacement served",
		slog.String("product_id", p.ID.String()),
		slog.Int("excluded", len(req.ExcludeIDs)),
	)
	writeJSON(w, http.StatusOK, remote.ReplacementResult{Status: remote.StatusSuccess, HTML: fragment})
}

func (s *Server) cartSet(r *http.Request) (map[core.ProductID]bool, int, error) {
	ids, err := s.store.CartItems(r.Context())
	if err != nil {
		return nil, 0, err
	}
	set := make(map[core.ProductID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, len(ids), nil
}

// decode reads a JSON body into v, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(v); err != nil {
		logging.FromContext(r.Context()).Warn("bad request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": StatusError, "message": MsgBadRequest})
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"status": StatusError, "message": MsgInternal})
}

func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered",
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"status": StatusError, "message": MsgInternal})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestLogging stores a request-scoped logger in the context and logs
// each completed request.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := s.logger.With(
			slog.String("request_id", chimw.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(logging.NewContext(r.Context(), log)))

		log.Info("request completed",
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
