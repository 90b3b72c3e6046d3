package video

import (
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

func (h *Handler) UploadVideo(w http.ResponseWriter, r *http.Request) {
	// Clips from phones; cap the form at 200MB.
	if err := r.ParseMultipartForm(200 << 20); err != nil {
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
	if len(errs) > 0 {
		httpx.FieldErrors(w, errs)
		return
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		httpx.FieldErrors(w, map[string]string{"family_member_id": "invalid family_member_id"})
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		httpx.FieldErrors(w, map[string]string{"video": "video file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to read video upload")
		return
	}

	in := UploadInput{
		FamilyMemberID: id,
		Title:          title,
		Description:    strings.TrimSpace(r.FormValue("description")),
		Video: FileUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		},
	}

	if thumbFile, thumbHeader, err := r.FormFile("thumbnail"); err == nil {
		thumbData, err := io.ReadAll(thumbFile)
		thumbFile.Close()
		if err == nil {
			in.Thumbnail = &FileUpload{
				Filename:    thumbHeader.Filename,
				ContentType: thumbHeader.Header.Get("Content-Type"),
				Data:        thumbData,
			}
		}
	}

	v, err := h.svc.Upload(r.Context(), in)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to upload video")
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]string{
		"video_id":  v.ID.String(),
		"video_url": v.VideoURL,
		"message":   "Video uploaded successfully",
	})
}

func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	videos, err := h.svc.ListByPatient(r.Context(), patientID)
	if err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to load videos")
		return
	}

	httpx.JSON(w, http.StatusOK, videos)
}

func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "videoID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid video ID")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to delete video")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Video deleted successfully"})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/upload-video", h.UploadVideo)
	r.Get("/videos/{patientID}", h.ListVideos)
	r.Delete("/videos/{videoID}", h.DeleteVideo)
}
