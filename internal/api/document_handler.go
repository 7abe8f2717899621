package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"docqa/backend/internal/document"
)

// maxUploadMemory caps how much of a multipart upload is buffered in
// memory before spilling to a temporary file.
const maxUploadMemory = 32 << 20 // 32MB

// DocumentHandler handles HTTP requests for document management.
type DocumentHandler struct {
	service *document.Service
}

func NewDocumentHandler(svc *document.Service) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// UploadResponse is returned after a successful document upload.
type UploadResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
	Status   string `json:"status"`
}

// DeleteResponse is returned after a successful document deletion.
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HandleUpload godoc
// @Summary      Upload a document
// @Description  Uploads a source document (PDF, DOCX, TXT, XLSX, XLS or CSV, max 10MB) for the answer service to draw on.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Document file"
// @Success      201  {object}  UploadResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/documents [post]
func (h *DocumentHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid multipart request"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "The 'file' form field is required"})
		return
	}
	defer func() {
		if cErr := file.Close(); cErr != nil {
			slog.Warn("Failed to close uploaded file", "error", cErr)
		}
	}()

	info, err := h.service.Upload(r.Context(), header.Filename, file, header.Size, func(percent int) {
		slog.Debug("Upload progress", "filename", header.Filename, "percent", percent)
	})
	if err != nil {
		respondWithError(w, err)
		return
	}

	slog.Info("Document uploaded", "id", info.ID, "filename", info.Filename, "size", info.Size)
	respondWithJSON(w, http.StatusCreated, UploadResponse{
		ID:       info.ID,
		Filename: info.Filename,
		Message:  "Document uploaded successfully",
		Status:   "success",
	})
}

// HandleList godoc
// @Summary      List documents
// @Description  Returns metadata for all uploaded documents in upload order.
// @Tags         Documents
// @Produce      json
// @Success      200  {array}  document.Info
// @Router       /v1/documents [get]
func (h *DocumentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.service.List(r.Context()))
}

// HandleGet godoc
// @Summary      Get a document
// @Description  Returns the metadata of a single uploaded document.
// @Tags         Documents
// @Produce      json
// @Param        documentID  path  string  true  "Document ID"
// @Success      200  {object}  document.Info
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/documents/{documentID} [get]
func (h *DocumentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	info, err := h.service.Get(r.Context(), documentID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, info)
}

// HandleDelete godoc
// @Summary      Delete a document
// @Description  Removes a document's metadata and its stored file.
// @Tags         Documents
// @Produce      json
// @Param        documentID  path  string  true  "Document ID"
// @Success      200  {object}  DeleteResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/documents/{documentID} [delete]
func (h *DocumentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "documentID")
	if err := h.service.Delete(r.Context(), documentID); err != nil {
		respondWithError(w, err)
		return
	}
	slog.Info("Document deleted", "id", documentID)
	respondWithJSON(w, http.StatusOK, DeleteResponse{
		Message: "Document deleted successfully",
		ID:      documentID,
	})
}
