package services_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"catalog-console/internal/catalogapi"
	"catalog-console/internal/wire"
)

type recordedCall struct {
	Method string
	Path   string
	Query  string
	Body   string
	Form   map[string][]string
	Files  map[string]string
}

// fakeBackend answers catalog API calls from per-route handlers and records
// every request it receives.
type fakeBackend struct {
	t      *testing.T
	server *httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []recordedCall
}

func newFakeBackend(t *testing.T) *fakeBackend {
	b := &fakeBackend{t: t, routes: map[string]http.HandlerFunc{}}
	b.server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	b.routes[method+" "+path] = h
	b.mu.Unlock()
}

func (b *fakeBackend) reply(method, path string, status int, body string) {
	b.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func (b *fakeBackend) client(token wire.CredentialProvider) *catalogapi.Client {
	return catalogapi.NewClient(wire.NewClient(b.server.URL, token, time.Second))
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	call := recordedCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			call.Form = r.MultipartForm.Value
			call.Files = map[string]string{}
			for field, headers := range r.MultipartForm.File {
				f, _ := headers[0].Open()
				data, _ := io.ReadAll(f)
				call.Files[field] = headers[0].Filename + ":" + string(data)
			}
		}
	} else if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		call.Body = string(data)
	}

	b.mu.Lock()
	b.calls = append(b.calls, call)
	h, ok := b.routes[r.Method+" "+r.URL.Path]
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail": "no route"}`))
		return
	}
	h(w, r)
}

func (b *fakeBackend) recorded() []recordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedCall(nil), b.calls...)
}

func (b *fakeBackend) callsTo(method, path string) []recordedCall {
	var out []recordedCall
	for _, c := range b.recorded() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}
