package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/adfharrison1/bookreport/pkg/report"
)

// ReportInfo describes one catalog entry
type ReportInfo struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Mutates bool   `json:"mutates"`
}

// ReportResponse is the body returned by a single report run
type ReportResponse struct {
	Operation string        `json:"operation"`
	Title     string        `json:"title"`
	Count     int64         `json:"count"`
	Result    report.Result `json:"result"`
}

// RunResponse is the body returned by a catalog run
type RunResponse struct {
	Summary *report.Summary `json:"summary"`
	Error   string          `json:"error,omitempty"`
}

// HandleListReports lists the catalog in execution order
func (h *Handler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	ops := report.Catalog()
	out := make([]ReportInfo, len(ops))
	for i, op := range ops {
		out[i] = ReportInfo{Name: op.Name, Title: op.Title, Mutates: op.Mutates}
	}
	WriteJSON(w, http.StatusOK, out)
}

// HandleRunReport runs one operation by name and returns its result
func (h *Handler) HandleRunReport(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	op, ok := report.Lookup(name)
	if !ok {
		h.logger.Warnf("Report '%s' not found", name)
		WriteJSONError(w, http.StatusNotFound, "unknown report: "+name)
		return
	}

	h.runs.Lock()
	res, err := report.RunOne(r.Context(), h.coll(), name)
	h.runs.Unlock()
	if err != nil {
		h.logger.Errorf("Report '%s' failed: %v", name, err)
		WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Infof("Report '%s' returned %d", name, res.Count())
	WriteJSON(w, http.StatusOK, ReportResponse{
		Operation: op.Name,
		Title:     op.Title,
		Count:     res.Count(),
		Result:    res,
	})
}

// HandleRunReports runs the catalog, optionally narrowed with ?only=a,b and
// ?read_only=true, and returns the summary
func (h *Handler) HandleRunReports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var only []string
	if v := query.Get("only"); v != "" {
		only = strings.Split(v, ",")
	}
	readOnly := false
	if v := query.Get("read_only"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "read_only must be a boolean")
			return
		}
		readOnly = parsed
	}

	ops, err := report.Select(report.Catalog(), only, readOnly)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, report.ErrUnknownOperation) || errors.Is(err, report.ErrEmptySelection) {
			status = http.StatusBadRequest
		}
		WriteJSONError(w, status, err.Error())
		return
	}

	runner := report.NewRunner(report.WithOperations(ops))
	h.runs.Lock()
	summary, err := runner.Run(r.Context(), h.coll())
	h.runs.Unlock()
	if err != nil {
		h.logger.Errorf("Report run failed: %v", err)
		WriteJSON(w, http.StatusInternalServerError, RunResponse{Summary: summary, Error: err.Error()})
		return
	}

	h.logger.Infof("Report run completed %d operations", len(summary.Outcomes))
	WriteJSON(w, http.StatusOK, RunResponse{Summary: summary})
}
