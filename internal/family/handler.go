package family

import (
	"encoding/json"
	"io"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"memory-companion/internal/httpx"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type RegisterRequest struct {
	PatientID       string `json:"patient_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Relationship    string `json:"relationship"`
	ProfilePhotoURL string `json:"profile_photo_url"`
}

func (req *RegisterRequest) validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(req.Relationship) == "" {
		errs["relationship"] = "relationship is required"
	}
	if req.Email == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		errs["email"] = "invalid email address"
	}
	if req.PatientID == "" {
		errs["patient_id"] = "patient_id is required"
	} else if _, err := uuid.Parse(req.PatientID); err != nil {
		errs["patient_id"] = "invalid patient_id"
	}
	return errs
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		httpx.FieldErrors(w, errs)
		return
	}

	patientID, _ := uuid.Parse(req.PatientID)
	m, err := h.svc.Register(r.Context(), RegisterInput{
		PatientID:       patientID,
		Name:            req.Name,
		Email:           req.Email,
		Relationship:    req.Relationship,
		ProfilePhotoURL: req.ProfilePhotoURL,
	})
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to register family member")
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{
		"family_member_id": m.ID.String(),
		"message":          "Family member registered successfully",
	})
}

func (h *Handler) UploadVoice(w http.ResponseWriter, r *http.Request) {
	// Voice samples are short clips; 25MB is plenty.
	if err := r.ParseMultipartForm(25 << 20); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	idStr := r.FormValue("family_member_id")
	if idStr == "" {
		httpx.FieldErrors(w, map[string]string{"family_member_id": "family_member_id is required"})
		return
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		httpx.FieldErrors(w, map[string]string{"family_member_id": "invalid family_member_id"})
		return
	}

	file, header, err := r.FormFile("voice_sample")
	if err != nil {
		httpx.FieldErrors(w, map[string]string{"voice_sample": "voice_sample file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to read voice sample")
		return
	}

	sampleURL, err := h.svc.AttachVoiceSample(r.Context(), VoiceSampleInput{
		FamilyMemberID: id,
		Filename:       header.Filename,
		ContentType:    header.Header.Get("Content-Type"),
		Data:           data,
	})
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to upload voice sample")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{
		"message":          "Voice uploaded successfully",
		"voice_sample_url": sampleURL,
	})
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	members, err := h.svc.ListMembers(r.Context(), patientID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to load family members")
		return
	}

	httpx.JSON(w, http.StatusOK, members)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/register", h.Register)
	r.Post("/upload-voice", h.UploadVoice)
	r.Get("/family-members/{patientID}", h.ListMembers)
}
