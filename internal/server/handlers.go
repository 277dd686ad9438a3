package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/packtrace/packtrace/internal/export"
	"github.com/packtrace/packtrace/internal/model"
	"github.com/packtrace/packtrace/internal/search"
)

// productsResponse is the body of GET /api/products.
type productsResponse struct {
	Data     []model.UnitRow  `json:"data"`
	Metadata pageMetadata     `json:"metadata"`
	Type     string           `json:"type"`
	Warnings []search.Warning `json:"warnings,omitempty"`
}

type pageMetadata struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type errorBody struct {
	Error errorInfo `json:"error"`
}

type errorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func paramsFrom(q url.Values) search.Params {
	return search.Params{
		Scope:     q.Get("searchScope"),
		Start:     q.Get("startSerial"),
		End:       q.Get("endSerial"),
		Type:      q.Get("type"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		GroupBy:   q.Get("groupBy"),
	}
}

func intParam(q url.Values, name string) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, &search.ValidationError{
			Code:    search.CodeInvalidPage,
			Message: name + " must be a positive integer",
		}
	}
	return n, nil
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q, "page")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := intParam(q, "limit")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := paramsFrom(q).Request()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.engine.List(r.Context(), req, page, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, productsResponse{
		Data: res.Rows,
		Metadata: pageMetadata{
			Total:      res.Total,
			Page:       res.Page,
			Limit:      res.Limit,
			TotalPages: res.TotalPages,
		},
		Type:     "product",
		Warnings: res.Warnings,
	})
}

func (s *Server) handleDetectType(w http.ResponseWriter, r *http.Request) {
	levels, err := s.engine.Detect(r.Context(), strings.TrimSpace(r.URL.Query().Get("serial")))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"types": levels})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req, err := paramsFrom(r.URL.Query()).Request()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rep, err := s.engine.Export(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sheet := export.FromReport(rep)
	var buf bytes.Buffer
	if err := sheet.Write(&buf); err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": sheet.Filename(s.now())}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleBoxUnits(w http.ResponseWriter, r *http.Request) {
	id, err := search.ParseID(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	units, err := s.engine.BoxUnits(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, units)
}

func (s *Server) handlePalletBoxes(w http.ResponseWriter, r *http.Request) {
	id, err := search.ParseID(r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	boxes, err := s.engine.PalletBoxes(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, boxes)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Ping != nil {
		if err := s.cfg.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail maps err to a response. Validation errors are the caller's to fix
// and come back verbatim; anything else is a generic 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if ve, ok := search.IsValidation(err); ok {
		writeError(w, http.StatusBadRequest, ve.Code, ve.Message)
		return
	}

	code := search.CodeInternal
	if errors.Is(err, search.ErrStore) {
		code = search.CodeStore
	} else {
		// Store failures are logged by the engine with the request filters.
		s.logger.Error("request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeError(w, http.StatusInternalServerError, code, "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorInfo{Code: code, Message: message}})
}
