package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-file-tree/internal/model"
)

type folderEntry struct {
	model.Folder
	seq uint64
}

type fileEntry struct {
	model.File
	seq uint64
}

// Memory is a Store kept in process memory. Children are indexed by parent.
type Memory struct {
	mu sync.RWMutex

	folders map[string]*folderEntry
	files   map[string]*fileEntry

	folderChildren map[model.DirRef][]string
	fileChildren   map[model.DirRef][]string

	seq   uint64
	now   func() time.Time
	newID func() string
}

func NewMemory() *Memory {
	return &Memory{
		folders:        make(map[string]*folderEntry),
		files:          make(map[string]*fileEntry),
		folderChildren: make(map[model.DirRef][]string),
		fileChildren:   make(map[model.DirRef][]string),
		now:            func() time.Time { return time.Now().UTC() },
		newID:          uuid.NewString,
	}
}

func (m *Memory) ListFolders(_ context.Context, parent model.DirRef) ([]model.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.folderChildren[parent]
	out := make([]model.Folder, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.folders[id].Folder)
	}

	return out, nil
}

func (m *Memory) ListAllFolders(_ context.Context) ([]model.Folder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]*folderEntry, 0, len(m.folders))
	for _, entry := range m.folders {
		entries = append(entries, entry)
	}
	slices.SortFunc(entries, func(a *folderEntry, b *folderEntry) int {
		return cmp.Compare(a.seq, b.seq)
	})

	out := make([]model.Folder, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Folder)
	}

	return out, nil
}

func (m *Memory) CreateFolder(_ context.Context, name string, parent model.DirRef) (model.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.folderNamed(parent, name, "") {
		return model.Folder{}, model.NewNameConflict(model.KindFolder, model.KindFolder, name, false)
	}
	if m.fileNamed(parent, name, "") {
		return model.Folder{}, model.NewNameConflict(model.KindFile, model.KindFolder, name, false)
	}

	m.seq++
	entry := &folderEntry{
		Folder: model.Folder{
			ID:        m.newID(),
			Name:      name,
			ParentID:  parent,
			CreatedAt: m.now(),
		},
		seq: m.seq,
	}
	m.folders[entry.ID] = entry
	m.folderChildren[parent] = append(m.folderChildren[parent], entry.ID)

	return entry.Folder, nil
}

func (m *Memory) RenameFolder(_ context.Context, id string, newName string) (model.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.folders[id]
	if !ok {
		return model.Folder{}, model.ErrFolderNotFound
	}

	if m.folderNamed(entry.ParentID, newName, id) {
		return model.Folder{}, model.NewNameConflict(model.KindFolder, model.KindFolder, newName, false)
	}
	if m.fileNamed(entry.ParentID, newName, "") {
		return model.Folder{}, model.NewNameConflict(model.KindFile, model.KindFolder, newName, false)
	}

	entry.Name = newName
	return entry.Folder, nil
}

func (m *Memory) DeleteFolder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	root, ok := m.folders[id]
	if !ok {
		return nil
	}

	doomed := m.descendants(id)
	for _, folderID := range doomed {
		dir := model.InFolder(folderID)
		for _, fileID := range m.fileChildren[dir] {
			delete(m.files, fileID)
		}
		delete(m.fileChildren, dir)
		delete(m.folderChildren, dir)
		delete(m.folders, folderID)
	}

	m.folderChildren[root.ParentID] = removeID(m.folderChildren[root.ParentID], id)
	return nil
}

func (m *Memory) ListFiles(_ context.Context, parent model.DirRef) ([]model.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.fileChildren[parent]
	entries := make([]*fileEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, m.files[id])
	}
	slices.SortFunc(entries, compareFileOrder)

	return fileValues(entries), nil
}

func (m *Memory) ListAllFiles(_ context.Context) ([]model.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]*fileEntry, 0, len(m.files))
	for _, entry := range m.files {
		entries = append(entries, entry)
	}
	slices.SortFunc(entries, func(a *fileEntry, b *fileEntry) int {
		if c := cmp.Compare(a.ParentID.Key(), b.ParentID.Key()); c != 0 {
			return c
		}
		return compareFileOrder(a, b)
	})

	return fileValues(entries), nil
}

func (m *Memory) CreateFile(_ context.Context, name string, parent model.DirRef, size int64) (model.File, error) {
	if size < 0 {
		return model.File{}, model.ErrNegativeSize
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fileNamed(parent, name, "") {
		return model.File{}, model.NewNameConflict(model.KindFile, model.KindFile, name, false)
	}
	if m.folderNamed(parent, name, "") {
		return model.File{}, model.NewNameConflict(model.KindFolder, model.KindFile, name, false)
	}

	m.seq++
	entry := &fileEntry{
		File: model.File{
			ID:        m.newID(),
			Name:      name,
			ParentID:  parent,
			Size:      size,
			Order:     m.maxOrder(parent, "") + 1,
			CreatedAt: m.now(),
		},
		seq: m.seq,
	}
	m.files[entry.ID] = entry
	m.fileChildren[parent] = append(m.fileChildren[parent], entry.ID)

	return entry.File, nil
}

func (m *Memory) UpdateFile(_ context.Context, id string, patch model.FilePatch) (model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.files[id]
	if !ok {
		return model.File{}, model.ErrFileNotFound
	}

	// Work on a copy so a failed check leaves the entry untouched.
	next := entry.File

	if patch.Name != nil {
		name := *patch.Name
		if m.fileNamed(next.ParentID, name, id) {
			return model.File{}, model.NewNameConflict(model.KindFile, model.KindFile, name, false)
		}
		if m.folderNamed(next.ParentID, name, "") {
			return model.File{}, model.NewNameConflict(model.KindFolder, model.KindFile, name, false)
		}
		next.Name = name
	}

	if patch.Parent != nil {
		dest := *patch.Parent
		if m.fileNamed(dest, next.Name, id) {
			return model.File{}, model.NewNameConflict(model.KindFile, model.KindFile, next.Name, true)
		}
		if m.folderNamed(dest, next.Name, "") {
			return model.File{}, model.NewNameConflict(model.KindFolder, model.KindFile, next.Name, true)
		}
		next.Order = m.maxOrder(dest, id) + 1
		next.ParentID = dest
	}

	if patch.Order != nil {
		next.Order = *patch.Order
	}

	if next.ParentID != entry.ParentID {
		m.fileChildren[entry.ParentID] = removeID(m.fileChildren[entry.ParentID], id)
		m.fileChildren[next.ParentID] = append(m.fileChildren[next.ParentID], id)
		// Insertion order is per directory.
		m.seq++
		entry.seq = m.seq
	}
	entry.File = next

	return entry.File, nil
}

func (m *Memory) ReorderFiles(_ context.Context, parent model.DirRef, orderedIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for index, id := range orderedIDs {
		entry, ok := m.files[id]
		if !ok || entry.ParentID != parent {
			continue
		}
		entry.Order = index
	}

	return nil
}

func (m *Memory) DeleteFile(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.files[id]
	if !ok {
		return nil
	}

	m.fileChildren[entry.ParentID] = removeID(m.fileChildren[entry.ParentID], id)
	delete(m.files, id)
	return nil
}

// descendants returns id followed by every folder below it, depth-first.
func (m *Memory) descendants(id string) []string {
	out := []string{}
	stack := []string{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, current)

		children := m.folderChildren[model.InFolder(current)]
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return out
}

func (m *Memory) folderNamed(parent model.DirRef, name string, excludeID string) bool {
	for _, id := range m.folderChildren[parent] {
		if id != excludeID && SameName(m.folders[id].Name, name) {
			return true
		}
	}

	return false
}

func (m *Memory) fileNamed(parent model.DirRef, name string, excludeID string) bool {
	for _, id := range m.fileChildren[parent] {
		if id != excludeID && SameName(m.files[id].Name, name) {
			return true
		}
	}

	return false
}

// maxOrder returns the highest order among files in parent, or -1 when empty.
func (m *Memory) maxOrder(parent model.DirRef, excludeID string) int {
	highest := -1
	for _, id := range m.fileChildren[parent] {
		if id == excludeID {
			continue
		}
		highest = max(highest, m.files[id].Order)
	}

	return highest
}

func compareFileOrder(a *fileEntry, b *fileEntry) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

func fileValues(entries []*fileEntry) []model.File {
	out := make([]model.File, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.File)
	}

	return out
}

func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(candidate string) bool { return candidate == id })
}
