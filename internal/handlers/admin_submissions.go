package handlers

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"corpsite/internal/models"
	"corpsite/internal/store"
)

// exportLimit caps the number of rows in a CSV export.
const exportLimit = 10_000

// SubmissionsList returns one page of contact submissions, newest first.
// Query: from, to (RFC 3339 or YYYY-MM-DD), limit, offset.
func (a *Admin) SubmissionsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.SubmissionFilter{
		From:   timeParam(q.Get("from")),
		To:     timeParam(q.Get("to")),
		Limit:  intParam(q.Get("limit")),
		Offset: intParam(q.Get("offset")),
	}

	page, err := a.submissions.List(r.Context(), f)
	if err != nil {
		storeFailed(w, err, "Failed to load submissions")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// SubmissionsStats returns per-day counts for ?type=chart&from&to, and the
// total/this-week/this-month summary otherwise.
func (a *Admin) SubmissionsStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("type") == "chart" {
		from, to := q.Get("from"), q.Get("to")
		if from == "" || to == "" {
			writeError(w, http.StatusBadRequest, "from and to date required for chart")
			return
		}
		points, err := a.submissions.Stats(r.Context(), from, to)
		if err != nil {
			storeFailed(w, err, "Failed to load stats")
			return
		}
		writeJSON(w, http.StatusOK, points)
		return
	}

	counts, err := a.submissions.Counts(r.Context())
	if err != nil {
		storeFailed(w, err, "Failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// SubmissionsExport streams the submissions in the optional from/to range
// as a CSV download.
func (a *Admin) SubmissionsExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := a.submissions.Export(r.Context(), timeParam(q.Get("from")), timeParam(q.Get("to")), exportLimit)
	if err != nil {
		storeFailed(w, err, "Failed to export submissions")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="contact-submissions.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"Date", "Name", "Email", "Phone", "Subject", "Message"})
	for _, s := range items {
		cw.Write([]string{
			s.CreatedAt.UTC().Format(time.RFC3339),
			s.Name,
			s.Email,
			deref(s.Phone),
			deref(s.Subject),
			s.Message,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("csv export write failed", "error", err)
	}
}

// timeParam parses an optional date bound; invalid values are ignored.
func timeParam(v string) *time.Time {
	t, ok := store.ParseTime(v)
	if !ok {
		return nil
	}
	return &t
}

// intParam parses an optional integer; invalid values read as 0.
func intParam(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
