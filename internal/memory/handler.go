package memory

import (
	"errors"
	"io"
	"net/http"
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

func (h *Handler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	// Photos can add up; allow 50MB of form data.
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	errs := map[string]string{}
	idStr := r.FormValue("family_member_id")
	if idStr == "" {
		errs["family_member_id"] = "family_member_id is required"
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		errs["title"] = "title is required"
	}
	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		errs["content"] = "content is required"
	}
	if len(errs) > 0 {
		httpx.FieldErrors(w, errs)
		return
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		httpx.FieldErrors(w, map[string]string{"family_member_id": "invalid family_member_id"})
		return
	}

	in := CreateInput{
		FamilyMemberID: id,
		Title:          title,
		Content:        content,
	}
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["photos"] {
			file, err := header.Open()
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "Error reading photo upload")
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				httpx.Error(w, http.StatusBadRequest, "Error reading photo upload")
				return
			}
			in.Photos = append(in.Photos, PhotoUpload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	m, err := h.svc.Create(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrVoiceMissing):
			httpx.Error(w, http.StatusBadRequest, "Voice not uploaded yet")
		case errors.Is(err, ErrVoiceNotReady):
			httpx.Error(w, http.StatusBadRequest, "Voice processing not complete")
		default:
			httpx.Error(w, http.StatusInternalServerError, "Failed to create memory")
		}
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{
		"memory_id": m.ID.String(),
		"audio_url": m.AudioURL,
		"message":   "Memory created successfully",
	})
}

func (h *Handler) ListMemories(w http.ResponseWriter, r *http.Request) {
	familyMemberID, err := uuid.Parse(chi.URLParam(r, "familyMemberID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid family member ID")
		return
	}

	memories, err := h.svc.ListByFamilyMember(r.Context(), familyMemberID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to load memories")
		return
	}

	httpx.JSON(w, http.StatusOK, memories)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/create-memory", h.CreateMemory)
	r.Get("/memories/{familyMemberID}", h.ListMemories)
}
