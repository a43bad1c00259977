package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hylla/nametag/internal/adapters/server/common"
	"github.com/hylla/nametag/internal/app"
)

// stubPreview provides deterministic preview responses for handler tests.
type stubPreview struct {
	summary     common.Summary
	competitors []common.CompetitorSummary
	err         error
	lastList    common.ListCompetitorsRequest
	lastIndex   int
	lastPage    int
}

func (s *stubPreview) Summary(context.Context) (common.Summary, error) {
	return s.summary, s.err
}

func (s *stubPreview) ListCompetitors(_ context.Context, req common.ListCompetitorsRequest) ([]common.CompetitorSummary, error) {
	s.lastList = req
	if s.err != nil {
		return nil, s.err
	}
	return s.competitors, nil
}

func (s *stubPreview) GetCompetitor(_ context.Context, index int) (common.CompetitorDetail, error) {
	s.lastIndex = index
	if s.err != nil {
		return common.CompetitorDetail{}, s.err
	}
	return common.CompetitorDetail{CompetitorSummary: common.CompetitorSummary{Index: index, Name: "Jane Doe"}}, nil
}

func (s *stubPreview) ListPages(context.Context) ([]common.PageSummary, error) {
	return []common.PageSummary{{Number: 1, Slots: 4, Competitors: 4}}, s.err
}

func (s *stubPreview) GetPage(_ context.Context, number int) (common.PageDetail, error) {
	s.lastPage = number
	if s.err != nil {
		return common.PageDetail{}, s.err
	}
	return common.PageDetail{PageSummary: common.PageSummary{Number: number}}, nil
}

func (s *stubPreview) ListRounds(context.Context) ([]common.Round, error) {
	return []common.Round{{Event: "333", Round: 1}}, s.err
}

func (s *stubPreview) Diagnostics(context.Context) ([]app.WarningSummary, error) {
	return []app.WarningSummary{{Kind: app.WarningUnknownActivity, Count: 1}}, s.err
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestHandlerSummarySuccess verifies the summary payload is passed through.
func TestHandlerSummarySuccess(t *testing.T) {
	preview := &stubPreview{summary: common.Summary{SnapshotID: "snap-1", Competitors: 5}}
	rec := serve(t, NewHandler(preview), http.MethodGet, "/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got common.Summary
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.SnapshotID != "snap-1" || got.Competitors != 5 {
		t.Fatalf("unexpected summary %#v", got)
	}
}

// TestHandlerListCompetitorsQuery verifies query parameters reach the service.
func TestHandlerListCompetitorsQuery(t *testing.T) {
	preview := &stubPreview{competitors: []common.CompetitorSummary{{Index: 0, Name: "Jane Doe"}}}
	rec := serve(t, NewHandler(preview), http.MethodGet, "/competitors?q=jane&country=US&role=judge&limit=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	want := common.ListCompetitorsRequest{Query: "jane", Country: "US", Role: "judge", Limit: 10}
	if preview.lastList != want {
		t.Fatalf("request = %#v, want %#v", preview.lastList, want)
	}
	var got struct {
		Items []common.CompetitorSummary `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(got.Items))
	}
}

func TestHandlerItemRoutes(t *testing.T) {
	preview := &stubPreview{}
	h := NewHandler(preview)
	if rec := serve(t, h, http.MethodGet, "/competitors/3"); rec.Code != http.StatusOK || preview.lastIndex != 3 {
		t.Fatalf("competitor route status = %d index = %d", rec.Code, preview.lastIndex)
	}
	if rec := serve(t, h, http.MethodGet, "/pages/2/"); rec.Code != http.StatusOK || preview.lastPage != 2 {
		t.Fatalf("page route status = %d page = %d", rec.Code, preview.lastPage)
	}
	for _, path := range []string{"/pages", "/rounds", "/diagnostics"} {
		if rec := serve(t, h, http.MethodGet, path); rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
}

// TestHandlerErrorMapping verifies structured status mapping for adapter errors.
func TestHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		target   string
		wantCode int
		wantAPI  string
	}{
		{name: "not ready", err: common.ErrNotReady, target: "/summary", wantCode: http.StatusServiceUnavailable, wantAPI: "not_ready"},
		{name: "not found", err: fmt.Errorf("competitor 9: %w", common.ErrNotFound), target: "/competitors/9", wantCode: http.StatusNotFound, wantAPI: "not_found"},
		{name: "invalid", err: common.ErrInvalidRequest, target: "/competitors", wantCode: http.StatusBadRequest, wantAPI: "invalid_request"},
		{name: "internal", err: errors.New("boom"), target: "/summary", wantCode: http.StatusInternalServerError, wantAPI: "internal_error"},
		{name: "bad limit", target: "/competitors?limit=x", wantCode: http.StatusBadRequest, wantAPI: "invalid_request"},
		{name: "bad index", target: "/competitors/abc", wantCode: http.StatusNotFound, wantAPI: "not_found"},
		{name: "unknown", target: "/nope", wantCode: http.StatusNotFound, wantAPI: "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, NewHandler(&stubPreview{err: tc.err}), http.MethodGet, tc.target)
			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantCode)
			}
			var env ErrorEnvelope
			if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if env.Error.Code != tc.wantAPI {
				t.Fatalf("error code = %q, want %q", env.Error.Code, tc.wantAPI)
			}
		})
	}
}

func TestHandlerRejectsWrites(t *testing.T) {
	rec := serve(t, NewHandler(&stubPreview{}), http.MethodPost, "/summary")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
	if got := rec.Header().Get("Allow"); got != "GET, HEAD" {
		t.Fatalf("Allow = %q", got)
	}
}
