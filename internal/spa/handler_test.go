package spa

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func testAssets() fstest.MapFS {
	return fstest.MapFS{
		"index.html":    {Data: []byte("<html>app</html>")},
		"assets/app.js": {Data: []byte("console.log('app')")},
	}
}

func TestSPAHandlerServesStaticFiles(t *testing.T) {
	handler, err := NewSPAHandler(testAssets())
	if err != nil {
		t.Fatalf("create handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "console.log") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestSPAHandlerFallsBackToIndex(t *testing.T) {
	handler, err := NewSPAHandler(testAssets())
	if err != nil {
		t.Fatalf("create handler: %v", err)
	}

	for _, path := range []string{"/events/42", "/signup/confirm"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if rec.Body.String() != "<html>app</html>" {
			t.Fatalf("%s: expected index body, got %q", path, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Fatalf("%s: unexpected content type %q", path, ct)
		}
	}
}

func TestSPAHandlerRequiresIndex(t *testing.T) {
	if _, err := NewSPAHandler(fstest.MapFS{"app.js": {Data: []byte("x")}}); err == nil {
		t.Fatal("expected error without index.html")
	}
}
