package web

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"f0oster/adspyview/gateway"

	"github.com/apex/log"
)

type sdDiffRequest struct {
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeGatewayError maps a reader failure back onto an HTTP status.
func writeGatewayError(w http.ResponseWriter, err error) {
	var apiErr *gateway.APIError
	if !errors.As(err, &apiErr) {
		log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	status := http.StatusBadRequest
	switch apiErr.Kind {
	case gateway.KindNotFound:
		status = http.StatusNotFound
	case gateway.KindServerError:
		status = http.StatusInternalServerError
	case gateway.KindMalformedResponse:
		status = http.StatusBadGateway
	default:
		if apiErr.Status >= 400 {
			status = apiErr.Status
		}
	}
	log.WithError(err).WithField("status", status).Warn("request failed")
	writeError(w, status, apiErr.Message)
}

// Handlers

func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := gateway.ListParams{
		Type:   q.Get("type"),
		Search: q.Get("search"),
		Limit:  gateway.DefaultLimit,
	}
	if l := q.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= gateway.MaxLimit {
			params.Limit = parsed
		}
	}
	if o := q.Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}

	list, err := s.reader.ListObjects(r.Context(), params)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	obj, err := s.reader.GetObject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (s *Server) handleGetObjectTimeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := s.reader.GetObjectTimeline(r.Context(), r.PathValue("id"))
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, timeline)
}

func (s *Server) handleGetVersionChanges(w http.ResponseWriter, r *http.Request) {
	usn, err := strconv.ParseInt(r.PathValue("usn"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid USN")
		return
	}

	changes, err := s.reader.GetVersionChanges(r.Context(), r.PathValue("id"), usn)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, changes)
}

func (s *Server) handleSDDiff(w http.ResponseWriter, r *http.Request) {
	if s.differ == nil {
		writeError(w, http.StatusNotImplemented, "Security descriptor diffing is not available")
		return
	}

	var req sdDiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if _, err := base64.StdEncoding.DecodeString(req.OldValue); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid base64 for old_value: "+err.Error())
		return
	}
	if _, err := base64.StdEncoding.DecodeString(req.NewValue); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid base64 for new_value: "+err.Error())
		return
	}

	resp, err := s.differ.DiffSecurityDescriptors(r.Context(), req.OldValue, req.NewValue)
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetObjectTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.reader.GetObjectTypes(r.Context())
	if err != nil {
		writeGatewayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}
