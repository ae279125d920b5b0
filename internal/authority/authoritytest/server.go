// Package authoritytest provides a recording fake of the remote authority
// for tests.
package authoritytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Server wraps httptest.Server and records every request it serves.
type Server struct {
	*httptest.Server
	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests []*RecordedRequest
}

// RecordedRequest stores request details for verification.
type RecordedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
	Time    time.Time
}

// Decode unmarshals the recorded body into v.
func (r *RecordedRequest) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// New creates a fake authority serving the given path handlers. Unknown
// paths answer 404.
func New(routes map[string]http.HandlerFunc) *Server {
	s := &Server{
		routes:   make(map[string]http.HandlerFunc, len(routes)),
		requests: make([]*RecordedRequest, 0),
	}
	for path, h := range routes {
		s.routes[path] = h
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := readAll(r)

	s.mu.Lock()
	s.requests = append(s.requests, &RecordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: r.Header.Clone(),
		Body:    body,
		Time:    time.Now(),
	})
	h, ok := s.routes[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// Handle installs or replaces the handler for path.
func (s *Server) Handle(path string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[path] = h
}

// LastRequest returns the last recorded request.
func (s *Server) LastRequest() *RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

// Requests returns all recorded requests.
func (s *Server) Requests() []*RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*RecordedRequest, len(s.requests))
	copy(result, s.requests)
	return result
}

// RequestsTo returns the recorded requests for one path.
func (s *Server) RequestsTo(path string) []*RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*RecordedRequest
	for _, r := range s.requests {
		if r.Path == path {
			result = append(result, r)
		}
	}
	return result
}

// RequestCount returns the number of recorded requests.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// ClearRequests clears recorded requests.
func (s *Server) ClearRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = s.requests[:0]
}
