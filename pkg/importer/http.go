package importer

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/guestflow/platform/pkg/common/logger"
	"github.com/guestflow/platform/pkg/importstatus"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/imports/leads/csv", h.handleLeadsCSV).Methods(http.MethodPost)
	router.HandleFunc("/imports/bookings/csv", h.handleBookingsCSV).Methods(http.MethodPost)
	router.HandleFunc("/imports/leads/sync", h.handleLeadsSync).Methods(http.MethodPost)
	router.HandleFunc("/imports/bookings/sync", h.handleBookingsSync).Methods(http.MethodPost)
	router.HandleFunc("/imports/last/{kind}", h.handleLastRun).Methods(http.MethodGet)
}

func (h *HTTPHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to read upload body")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if len(raw) == 0 {
		http.Error(w, "empty upload", http.StatusBadRequest)
		return nil, false
	}
	return raw, true
}

func (h *HTTPHandler) handleLeadsCSV(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.readBody(w, r)
	if !ok {
		return
	}

	result, err := h.service.ImportLeadsCSV(r.Context(), raw, "csv:upload")
	if err != nil {
		logger.Log.WithError(err).Error("lead CSV import failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleBookingsCSV(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.readBody(w, r)
	if !ok {
		return
	}

	result, err := h.service.ImportBookingsCSV(r.Context(), raw, "csv:upload")
	if err != nil {
		logger.Log.WithError(err).Error("booking CSV import failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleLeadsSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ImportLeadsAPI(r.Context())
	if err != nil {
		h.writeSyncError(w, err, "lead sync failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleBookingsSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ImportBookingsAPI(r.Context())
	if err != nil {
		h.writeSyncError(w, err, "booking sync failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) writeSyncError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, ErrRemoteNotConfigured) {
		http.Error(w, "remote source not configured", http.StatusServiceUnavailable)
		return
	}
	logger.Log.WithError(err).Error(msg)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (h *HTTPHandler) handleLastRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := vars["kind"]

	summary, err := h.service.LastRun(r.Context(), kind)
	if err != nil {
		if errors.Is(err, importstatus.ErrNotFound) {
			http.Error(w, "no import recorded", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to fetch last import")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
