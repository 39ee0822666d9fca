package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sells-group/inspect-cli/internal/chart"
	"github.com/sells-group/inspect-cli/internal/model"
	"github.com/sells-group/inspect-cli/internal/store"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,max=50,dive,required"`
	// Parameters restricts the comparison; empty compares the whole catalog.
	Parameters []string `json:"parameters" validate:"omitempty,dive,required"`
}

type rowsResponse struct {
	Query string               `json:"query"`
	Kind  model.IdentifierKind `json:"kind"`
	Count int                  `json:"count"`
	Rows  []model.Row          `json:"rows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rows": s.ds.Len()})
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	kind, rows := s.ds.Search(q)
	if rows == nil {
		rows = []model.Row{}
	}
	writeJSON(w, http.StatusOK, rowsResponse{Query: q, Kind: kind, Count: len(rows), Rows: rows})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	kind, rows := s.ds.Search(q)
	insp, err := s.inspector.Inspect(q, kind, rows)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no records found for %s %q", kind.Label(), q))
		return
	}

	if save, _ := strconv.ParseBool(r.URL.Query().Get("save")); save {
		if s.store == nil {
			writeError(w, http.StatusBadRequest, "history store is not configured")
			return
		}
		if err := s.store.SaveInspection(r.Context(), &insp); err != nil {
			zap.L().Error("api: save inspection", zap.String("query", q), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save inspection")
			return
		}
	}
	writeJSON(w, http.StatusOK, insp)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := requestValidator().Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	res, ok := s.comparison(req.IDs, req.Parameters)
	if !ok {
		writeError(w, http.StatusNotFound, "no records found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRanges(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"parameters": s.inspector.Catalog().Specs()})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	param := strings.TrimSpace(r.URL.Query().Get("param"))
	ids := splitIDs(r.URL.Query().Get("q"))
	if param == "" || len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "param and q are required")
		return
	}
	if _, ok := s.inspector.Catalog().Lookup(param); !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no range for parameter %q", param))
		return
	}
	res, ok := s.comparison(ids, []string{param})
	if !ok {
		writeError(w, http.StatusNotFound, "no records found")
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format != chart.FormatSVG {
		format = chart.FormatPNG
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf, res, param, chart.Options{Format: format}); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", chart.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleListInspections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.InspectionFilter{
		TrackID: q.Get("track_id"),
		JumboID: q.Get("jumbo_id"),
		Overall: model.OverallStatus(strings.ToUpper(q.Get("overall"))),
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))

	list, err := s.store.ListInspections(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list inspections", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list inspections")
		return
	}
	if list == nil {
		list = []model.Inspection{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"inspections": list})
}

func (s *Server) handleGetInspection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	insp, err := s.store.GetInspection(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "inspection not found")
		return
	}
	if err != nil {
		zap.L().Error("api: get inspection", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load inspection")
		return
	}
	writeJSON(w, http.StatusOK, insp)
}

// comparison resolves ids to rows and compares them. ok is false when no id
// matched any row.
func (s *Server) comparison(ids, params []string) (model.ComparisonResult, bool) {
	rows := s.ds.SearchAll(ids)
	if len(rows) == 0 {
		return model.ComparisonResult{}, false
	}
	specs := s.inspector.Catalog().Specs()
	if len(params) > 0 {
		specs = s.inspector.Catalog().Select(params)
	}
	return s.engine.Compare(rows, specs), true
}

func splitIDs(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
