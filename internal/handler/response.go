package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-file-tree/internal/model"
	"go-file-tree/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var apiErr *apierror.APIError
	var conflict *model.NameConflictError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		message = apiErr.Message
	case errors.As(err, &conflict):
		status = http.StatusConflict
		message = conflict.Error()
	case errors.Is(err, model.ErrNameConflict):
		status = http.StatusConflict
		message = "name already exists in this directory"
	case errors.Is(err, model.ErrNegativeSize):
		status = http.StatusBadRequest
		message = msgSizeInvalid
	case errors.Is(err, model.ErrFolderNotFound):
		status = http.StatusNotFound
		message = "Folder not found"
	case errors.Is(err, model.ErrFileNotFound):
		status = http.StatusNotFound
		message = "File not found"
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, model.ErrorResponse{Error: message})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apierror.BadRequest("invalid JSON body")
	}

	return nil
}
