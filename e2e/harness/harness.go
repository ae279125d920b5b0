// Package harness provides E2E testing utilities for Shelf.
package harness

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/artpar/shelf/internal/authority"
	"github.com/artpar/shelf/internal/authority/sqlite"
)

// E2EHarness is the main test orchestrator. It runs a real authority on an
// in-memory store.
type E2EHarness struct {
	t       *testing.T
	server  *httptest.Server
	store   *sqlite.Store
	timeout time.Duration
}

// Config configures the harness.
type Config struct {
	// CatalogYAML replaces the built-in catalog when set.
	CatalogYAML string
	Timeout     time.Duration // Default: 5 seconds
}

// New creates a new E2E harness.
func New(t *testing.T, cfg Config) *E2EHarness {
	t.Helper()

	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	catalog, err := loadCatalog(cfg.CatalogYAML)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	store, err := sqlite.NewInMemory()
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	server, err := authority.NewServer(catalog, store)
	if err != nil {
		store.Close()
		t.Fatalf("failed to create authority: %v", err)
	}

	h := &E2EHarness{
		t:       t,
		server:  httptest.NewServer(server.Handler()),
		store:   store,
		timeout: cfg.Timeout,
	}

	// Keep config lookups away from the developer's real home.
	t.Setenv("HOME", t.TempDir())

	t.Cleanup(h.cleanup)
	return h
}

func loadCatalog(doc string) (*authority.Catalog, error) {
	if doc == "" {
		return authority.DefaultCatalog()
	}
	return authority.ParseCatalog([]byte(doc))
}

func (h *E2EHarness) cleanup() {
	h.server.Close()
	h.store.Close()
}

// ServerURL returns the authority URL.
func (h *E2EHarness) ServerURL() string {
	return h.server.URL
}

// Store returns the authority's store for direct assertions.
func (h *E2EHarness) Store() *sqlite.Store {
	return h.store
}

// Timeout returns the configured timeout.
func (h *E2EHarness) Timeout() time.Duration {
	return h.timeout
}

// T returns the testing.T instance.
func (h *E2EHarness) T() *testing.T {
	return h.t
}

// CLI returns a CLI runner for this harness.
func (h *E2EHarness) CLI() *CLIRunner {
	return &CLIRunner{harness: h}
}

// TUI returns a TUI runner for this harness.
func (h *E2EHarness) TUI() *TUIRunner {
	return &TUIRunner{harness: h}
}
