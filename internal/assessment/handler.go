package assessment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"healthbridge/internal/triage"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type AssessRequest struct {
	PatientID string `json:"patientId"`
	triage.SymptomInput
}

type ChatRequest struct {
	PatientID string `json:"patientId"`
	Message   string `json:"message"`
}

type CatalogResponse struct {
	Version    string                  `json:"version"`
	Conditions []triage.ConditionEntry `json:"conditions"`
}

type HistoryResponse struct {
	PatientID   string   `json:"patientId"`
	Assessments []Record `json:"assessments"`
}

func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.svc.Assess(r.Context(), req.PatientID, req.SymptomInput)
	if err != nil {
		respondWithTriageError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reply, err := h.svc.Chat(r.Context(), req.PatientID, triage.SymptomInput{FreeText: req.Message})
	if err != nil {
		respondWithTriageError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reply)
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	catalog := h.svc.Catalog()
	respondWithJSON(w, http.StatusOK, CatalogResponse{
		Version:    catalog.Version(),
		Conditions: catalog.Entries(),
	})
}

func (h *Handler) Symptoms(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"symptoms": triage.Vocabulary(),
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := h.svc.History(r.Context(), patientID, limit)
	if err != nil {
		log.Error().Err(err).Str("patient_id", patientID).Msg("failed to load history")
		respondWithError(w, http.StatusInternalServerError, "failed to load assessment history")
		return
	}
	respondWithJSON(w, http.StatusOK, HistoryResponse{PatientID: patientID, Assessments: records})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/triage", func(r chi.Router) {
		r.Post("/assess", h.Assess)
		r.Post("/chat", h.Chat)
		r.Get("/catalog", h.Catalog)
		r.Get("/symptoms", h.Symptoms)
	})
	r.Get("/patients/{patientID}/assessments", h.History)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func respondWithTriageError(w http.ResponseWriter, err error) {
	var empty *triage.EmptyInputError
	var invalid *triage.InvalidInputError
	switch {
	case errors.As(err, &empty):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &invalid):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Msg("triage failed")
		respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
