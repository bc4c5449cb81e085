package model

import (
	"errors"
	"fmt"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrFileNotFound   = errors.New("file not found")
	ErrNameConflict   = errors.New("name conflict")
	ErrNegativeSize   = errors.New("size must be a non-negative number")
)

type EntryKind string

const (
	KindFolder EntryKind = "folder"
	KindFile   EntryKind = "file"
)

// NameConflictError reports a case-insensitive sibling name clash.
type NameConflictError struct {
	Existing EntryKind
	Name     string
	message  string
}

// NewNameConflict builds the conflict raised when an entry of kind incoming
// named name collides with an existing entry. inTarget selects the wording
// used for a file being moved into another directory.
func NewNameConflict(existing EntryKind, incoming EntryKind, name string, inTarget bool) *NameConflictError {
	where := "in this directory"
	if inTarget {
		where = "in target folder"
	}

	var msg string
	switch {
	case existing == incoming && existing == KindFolder:
		msg = fmt.Sprintf("Folder %q already exists %s", name, where)
	case existing == incoming:
		msg = fmt.Sprintf("File %q already exists %s", name, where)
	default:
		msg = fmt.Sprintf("A %s named %q already exists %s", existing, name, where)
	}

	return &NameConflictError{Existing: existing, Name: name, message: msg}
}

func (e *NameConflictError) Error() string {
	return e.message
}

func (e *NameConflictError) Is(target error) bool {
	return target == ErrNameConflict
}
