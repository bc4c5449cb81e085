package model

import (
	"encoding/json"
	"time"
)

// RootSentinel is the wire value of a file's parentId when the file lives at the root.
const RootSentinel = "__root__"

// DirRef identifies a directory: either the root or a folder by id.
// The zero value is the root.
type DirRef struct {
	folderID string
}

func Root() DirRef {
	return DirRef{}
}

// InFolder returns a reference to the folder with the given id. An empty id
// and the root sentinel both resolve to the root.
func InFolder(id string) DirRef {
	if id == "" || id == RootSentinel {
		return Root()
	}

	return DirRef{folderID: id}
}

// ParseDirRef maps an optional wire value onto a DirRef; nil means root.
func ParseDirRef(raw *string) DirRef {
	if raw == nil {
		return Root()
	}

	return InFolder(*raw)
}

func (d DirRef) IsRoot() bool {
	return d.folderID == ""
}

// FolderID returns the folder id and false for the root.
func (d DirRef) FolderID() (string, bool) {
	return d.folderID, d.folderID != ""
}

// Key is a stable, non-empty string form used for indexing and storage.
func (d DirRef) Key() string {
	if d.IsRoot() {
		return RootSentinel
	}

	return d.folderID
}

func (d DirRef) String() string {
	return d.Key()
}

type Folder struct {
	ID        string
	Name      string
	ParentID  DirRef
	CreatedAt time.Time
}

type folderJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarshalJSON writes a root parent as null.
func (f Folder) MarshalJSON() ([]byte, error) {
	out := folderJSON{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt}
	if id, ok := f.ParentID.FolderID(); ok {
		out.ParentID = &id
	}

	return json.Marshal(out)
}

func (f *Folder) UnmarshalJSON(data []byte) error {
	var in folderJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*f = Folder{ID: in.ID, Name: in.Name, ParentID: ParseDirRef(in.ParentID), CreatedAt: in.CreatedAt}
	return nil
}

type File struct {
	ID        string
	Name      string
	ParentID  DirRef
	Size      int64
	Order     int
	CreatedAt time.Time
}

type fileJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parentId"`
	Size      int64     `json:"size"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarshalJSON writes a root parent as RootSentinel.
func (f File) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileJSON{
		ID:        f.ID,
		Name:      f.Name,
		ParentID:  f.ParentID.Key(),
		Size:      f.Size,
		Order:     f.Order,
		CreatedAt: f.CreatedAt,
	})
}

func (f *File) UnmarshalJSON(data []byte) error {
	var in fileJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*f = File{
		ID:        in.ID,
		Name:      in.Name,
		ParentID:  InFolder(in.ParentID),
		Size:      in.Size,
		Order:     in.Order,
		CreatedAt: in.CreatedAt,
	}
	return nil
}

// FilePatch lists the fields UpdateFile may change. Nil fields are left alone.
// Order is applied after a move, so an explicit order wins over the recomputed one.
type FilePatch struct {
	Name   *string
	Parent *DirRef
	Order  *int
}

func (p FilePatch) Empty() bool {
	return p.Name == nil && p.Parent == nil && p.Order == nil
}
