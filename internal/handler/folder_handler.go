package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-file-tree/internal/model"
	"go-file-tree/internal/service"
)

type FolderHandler struct {
	service *service.TreeService
}

func NewFolderHandler(service *service.TreeService) *FolderHandler {
	return &FolderHandler{service: service}
}

// List serves GET /folders. all=true returns every folder, otherwise the
// children of parentId (absent or empty means root).
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		folders []model.Folder
		err     error
	)
	if query.Get("all") == "true" {
		folders, err = h.service.ListAllFolders(r.Context())
	} else {
		folders, err = h.service.ListFolders(r.Context(), model.InFolder(query.Get("parentId")))
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folders)
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateFolderRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := requireName(payload.Name); err != nil {
		writeError(w, err)
		return
	}

	folder, err := h.service.CreateFolder(r.Context(), payload.Name, model.ParseDirRef(payload.ParentID))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

func (h *FolderHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var payload model.RenameFolderRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := requireName(payload.Name); err != nil {
		writeError(w, err)
		return
	}

	folder, err := h.service.RenameFolder(r.Context(), chi.URLParam(r, "id"), payload.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteFolder(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	writeNoContent(w)
}
