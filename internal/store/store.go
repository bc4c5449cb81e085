// Package store defines the tree store contract and its in-memory implementation.
package store

import (
	"context"
	"strings"

	"go-file-tree/internal/model"
)

// Store holds folders and files and enforces case-insensitive sibling name
// uniqueness across both kinds within a directory.
type Store interface {
	ListFolders(ctx context.Context, parent model.DirRef) ([]model.Folder, error)
	ListAllFolders(ctx context.Context) ([]model.Folder, error)
	CreateFolder(ctx context.Context, name string, parent model.DirRef) (model.Folder, error)
	RenameFolder(ctx context.Context, id string, newName string) (model.Folder, error)
	// DeleteFolder removes the folder, every descendant folder and every file
	// inside any of them. Unknown ids are a no-op.
	DeleteFolder(ctx context.Context, id string) error

	ListFiles(ctx context.Context, parent model.DirRef) ([]model.File, error)
	ListAllFiles(ctx context.Context) ([]model.File, error)
	CreateFile(ctx context.Context, name string, parent model.DirRef, size int64) (model.File, error)
	UpdateFile(ctx context.Context, id string, patch model.FilePatch) (model.File, error)
	// ReorderFiles sets each matching file's order to its index in orderedIDs.
	// Ids that are unknown or live in another directory are skipped.
	ReorderFiles(ctx context.Context, parent model.DirRef, orderedIDs []string) error
	DeleteFile(ctx context.Context, id string) error
}

// SameName reports whether two entry names collide.
func SameName(a string, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}
