package assistant

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"memory-companion/internal/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type QueryRequest struct {
	PatientID string `json:"patient_id"`
	Query     string `json:"query"`
}

func (req *QueryRequest) validate() map[string]string {
	errs := map[string]string{}
	if req.PatientID == "" {
		errs["patient_id"] = "patient_id is required"
	} else if _, err := uuid.Parse(req.PatientID); err != nil {
		errs["patient_id"] = "invalid patient_id"
	}
	if strings.TrimSpace(req.Query) == "" {
		errs["query"] = "query is required"
	}
	return errs
}

func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		httpx.FieldErrors(w, errs)
		return
	}

	patientID, _ := uuid.Parse(req.PatientID)
	env, err := h.svc.Answer(r.Context(), patientID, req.Query)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to answer query")
		return
	}

	httpx.JSON(w, http.StatusOK, env)
}

func (h *Handler) HandleIdentifyPhoto(w http.ResponseWriter, r *http.Request) {
	// One photo per request; 15MB covers phone cameras.
	if err := r.ParseMultipartForm(15 << 20); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	patientIDStr := r.FormValue("patient_id")
	if patientIDStr == "" {
		httpx.FieldErrors(w, map[string]string{"patient_id": "patient_id is required"})
		return
	}
	patientID, err := uuid.Parse(patientIDStr)
	if err != nil {
		httpx.FieldErrors(w, map[string]string{"patient_id": "invalid patient_id"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httpx.FieldErrors(w, map[string]string{"image": "image file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to read image upload")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}

	env, err := h.svc.IdentifyPhoto(r.Context(), patientID, Image{MIMEType: mimeType, Data: data})
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to identify photo")
		return
	}

	httpx.JSON(w, http.StatusOK, env)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/query", h.HandleQuery)
	r.Post("/identify-photo", h.HandleIdentifyPhoto)
}
