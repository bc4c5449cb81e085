package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"go-file-tree/internal/model"
	"go-file-tree/internal/service"
	"go-file-tree/pkg/apierror"
)

type FileHandler struct {
	service *service.TreeService
}

func NewFileHandler(service *service.TreeService) *FileHandler {
	return &FileHandler{service: service}
}

// List serves GET /files. all=true returns every file ordered by parent then
// order; otherwise the files of parentId (absent or empty means root).
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		files []model.File
		err   error
	)
	if query.Get("all") == "true" {
		files, err = h.service.ListAllFiles(r.Context())
	} else {
		files, err = h.service.ListFiles(r.Context(), model.InFolder(query.Get("parentId")))
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

func (h *FileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateFileRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := requireName(payload.Name); err != nil {
		writeError(w, err)
		return
	}

	parentID := ""
	if payload.ParentID != nil {
		parentID = *payload.ParentID
	}
	if err := check(parentID, validation.Required.Error(msgParentIDRequired)); err != nil {
		writeError(w, err)
		return
	}

	size, err := parseSize(payload.Size)
	if err != nil {
		writeError(w, err)
		return
	}

	file, err := h.service.CreateFile(r.Context(), payload.Name, model.InFolder(parentID), size)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, file)
}

// Update serves PATCH /files/{id}: a non-blank string name renames, a string
// parentId moves. Null or non-string values are ignored.
func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateFileRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	var patch model.FilePatch
	if name := payload.Name.Value; name != nil && strings.TrimSpace(*name) != "" {
		patch.Name = name
	}
	if payload.ParentID.Present && payload.ParentID.Value != nil {
		dest := model.InFolder(*payload.ParentID.Value)
		patch.Parent = &dest
	}
	if patch.Empty() {
		writeError(w, apierror.BadRequest(msgFilePatchRequired))
		return
	}

	file, err := h.service.UpdateFile(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, file)
}

func (h *FileHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var payload model.ReorderFilesRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	orderedIDs, err := parseOrderedIDs(payload.OrderedIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ReorderFiles(r.Context(), model.ParseDirRef(payload.ParentID), orderedIDs); err != nil {
		writeError(w, err)
		return
	}

	writeNoContent(w)
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteFile(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeNoContent(w)
}
