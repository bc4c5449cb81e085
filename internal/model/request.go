package model

import (
	"bytes"
	"encoding/json"
)

type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

type RenameFolderRequest struct {
	Name string `json:"name"`
}

type CreateFileRequest struct {
	Name     string          `json:"name"`
	ParentID *string         `json:"parentId"`
	Size     json.RawMessage `json:"size"`
}

// UpdateFileRequest fields that are not JSON strings are ignored rather than
// failing the request.
type UpdateFileRequest struct {
	Name     OptionalString `json:"name"`
	ParentID OptionalString `json:"parentId"`
}

type ReorderFilesRequest struct {
	ParentID   *string         `json:"parentId"`
	OrderedIDs json.RawMessage `json:"orderedIds"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// OptionalString tells an absent field apart from an explicit null.
//   - Present=false: field absent
//   - Present=true, Value=nil: field is null or not a string
//   - Present=true, Value set: field is a string
type OptionalString struct {
	Present bool
	Value   *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		o.Value = nil
		return nil
	}
	o.Value = &s
	return nil
}
