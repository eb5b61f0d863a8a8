package presenter

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/SaifuddinSaifee/cmu-housing-app/internal/domain"
)

func render(err error) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	_ = Error(e.NewContext(req, rec), err)
	return rec
}

func TestStatusOf(t *testing.T) {
	cases := map[domain.Kind]int{
		domain.KindValidation:      http.StatusBadRequest,
		domain.KindUnauthenticated: http.StatusUnauthorized,
		domain.KindForbidden:       http.StatusForbidden,
		domain.KindNotFound:        http.StatusNotFound,
		domain.KindOutOfRange:      http.StatusNotFound,
		domain.KindConflict:        http.StatusConflict,
		domain.KindTooManyRequests: http.StatusTooManyRequests,
		domain.KindInternal:        http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := StatusOf(kind); got != want {
			t.Errorf("%s: expected %d, got %d", kind, want, got)
		}
	}
}

func TestErrorEnvelope(t *testing.T) {
	rec := render(errors.Wrap(domain.NewNotFoundError("listing"), "lookup"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "fail" || body["kind"] != "not_found" || body["message"] != "listing not found" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestInternalErrorHidesCause(t *testing.T) {
	rec := render(errors.New("pq: password authentication failed for user marketplace"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != "error" || body["kind"] != "internal" || body["message"] != internalMessage {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestConditional(t *testing.T) {
	e := echo.New()
	payload := echo.Map{"data": echo.Map{"listing": "x"}}

	rec := httptest.NewRecorder()
	_ = Conditional(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), payload)
	tag := rec.Header().Get(headerETag)
	if rec.Code != http.StatusOK || tag == "" {
		t.Fatalf("expected 200 with etag, got %d %q", rec.Code, tag)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerIfNoneMatch, tag)
	rec = httptest.NewRecorder()
	_ = Conditional(e.NewContext(req, rec), payload)
	if rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 304, got %d", rec.Code)
	}

	if ETag([]byte("a")) == ETag([]byte("b")) {
		t.Fatalf("distinct bodies must not share a tag")
	}
}
