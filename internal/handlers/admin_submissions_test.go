package handlers

import (
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"corpsite/internal/models"
)

func seedSubmissions(env *testEnv) {
	ctx := context.Background()
	env.submissions.Save(ctx, models.ContactInput{Name: "Ana", Email: "ana@example.org", Message: "Hello,\nworld", Subject: "POS"})
	env.submissions.Save(ctx, models.ContactInput{Name: "Bo", Email: "bo@example.org", Message: "Hi", Phone: "555"})
}

func TestSubmissionsList(t *testing.T) {
	env := newTestEnv(t)
	seedSubmissions(env)

	rr := serve(env.admin.SubmissionsList, jsonRequest(http.MethodGet,
		"/api/admin/contact-submissions?from=2026-03-01&to=bogus&limit=10&offset=5", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	page := decodeBody[models.SubmissionPage](t, rr)
	if page.Total != 2 || len(page.Items) != 2 {
		t.Errorf("page: %+v", page)
	}

	f := env.submissions.lastFilter
	if f.From == nil || f.From.Format("2006-01-02") != "2026-03-01" {
		t.Errorf("from: got %v", f.From)
	}
	if f.To != nil {
		t.Errorf("unparseable to should be ignored, got %v", f.To)
	}
	if f.Limit != 10 || f.Offset != 5 {
		t.Errorf("pagination: got %d/%d", f.Limit, f.Offset)
	}
}

func TestSubmissionsStats(t *testing.T) {
	env := newTestEnv(t)
	seedSubmissions(env)

	rr := serve(env.admin.SubmissionsStats, jsonRequest(http.MethodGet, "/stats", ""))
	counts := decodeBody[models.SubmissionCounts](t, rr)
	if counts.Total != 2 {
		t.Errorf("counts: %+v", counts)
	}

	rr = serve(env.admin.SubmissionsStats, jsonRequest(http.MethodGet, "/stats?type=chart&from=2026-03-01&to=2026-03-31", ""))
	points := decodeBody[[]models.StatPoint](t, rr)
	if len(points) != 1 || points[0].Count != 2 {
		t.Errorf("chart: %+v", points)
	}

	rr = serve(env.admin.SubmissionsStats, jsonRequest(http.MethodGet, "/stats?type=chart&from=2026-03-01", ""))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("chart without to: got %d, want 400", rr.Code)
	}

	env.submissions.err = errBoom
	rr = serve(env.admin.SubmissionsStats, jsonRequest(http.MethodGet, "/stats", ""))
	if rr.Code != http.StatusInternalServerError || errorMessage(t, rr) != "Failed to load stats" {
		t.Errorf("failure: got %d %s", rr.Code, rr.Body.String())
	}
}

func TestSubmissionsExport(t *testing.T) {
	env := newTestEnv(t)
	seedSubmissions(env)

	rr := serve(env.admin.SubmissionsExport, jsonRequest(http.MethodGet, "/export", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type: %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("content disposition: %q", cd)
	}

	records, err := csv.NewReader(strings.NewReader(rr.Body.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("rows: got %d, want 3", len(records))
	}
	if strings.Join(records[0], ",") != "Date,Name,Email,Phone,Subject,Message" {
		t.Errorf("header: %v", records[0])
	}
	if records[1][1] != "Ana" || records[1][4] != "POS" || records[1][5] != "Hello,\nworld" {
		t.Errorf("first row: %v", records[1])
	}
	if records[2][3] != "555" || records[2][4] != "" {
		t.Errorf("second row: %v", records[2])
	}
}
