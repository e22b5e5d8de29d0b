package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/recipeblog/recipeq/internal/config"
)

// RecipeServer is a stand-in for the blog that records the raw query of
// every request it receives.
type RecipeServer struct {
	*httptest.Server

	mu      sync.Mutex
	queries []string
}

// Queries returns the raw query strings received so far, in arrival order
func (s *RecipeServer) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

func (s *RecipeServer) record(r *http.Request) {
	s.mu.Lock()
	s.queries = append(s.queries, r.URL.RawQuery)
	s.mu.Unlock()
}

// NewRecipeTestServer serves the blog endpoints:
//
//	/blog                echoes the raw query string
//	/grocerylist/update  requires the SessionID cookie and an id
//	/openapi.yaml        BlogOpenAPISpec
func NewRecipeTestServer() *RecipeServer {
	s := &RecipeServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write([]byte(BlogOpenAPISpec))
	})

	mux.HandleFunc("/blog", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("search: " + r.URL.RawQuery))
	})

	mux.HandleFunc("/grocerylist/update", func(w http.ResponseWriter, r *http.Request) {
		s.record(r)
		c, err := r.Cookie(config.SessionCookie)
		if err != nil || c.Value != SessionID {
			http.Error(w, "no session", http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("id") == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<h1>Shopping Cart Updated</h1>"))
	})

	s.Server = httptest.NewServer(mux)
	return s
}

// NewBlockingTestServer holds every request until the client goes away or
// release is closed. The returned channel receives each request's raw query
// as it arrives.
func NewBlockingTestServer(release <-chan struct{}) (*httptest.Server, <-chan string) {
	started := make(chan string, 16)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- r.URL.RawQuery
		select {
		case <-r.Context().Done():
		case <-release:
			w.Write([]byte("released: " + r.URL.RawQuery))
		}
	}))
	return server, started
}
