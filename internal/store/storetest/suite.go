// Package storetest holds behavioural tests shared by every store.Store backend.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"go-file-tree/internal/model"
	"go-file-tree/internal/store"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run exercises the full Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("folder names are unique per directory", func(t *testing.T) { testFolderUniqueness(t, newStore(t)) })
	t.Run("cross type conflicts", func(t *testing.T) { testCrossTypeConflicts(t, newStore(t)) })
	t.Run("rename folder", func(t *testing.T) { testRenameFolder(t, newStore(t)) })
	t.Run("delete folder cascades", func(t *testing.T) { testDeleteFolderCascade(t, newStore(t)) })
	t.Run("delete unknown folder is a no-op", func(t *testing.T) { testDeleteUnknownFolder(t, newStore(t)) })
	t.Run("create file assigns order", func(t *testing.T) { testCreateFileOrder(t, newStore(t)) })
	t.Run("reorder files", func(t *testing.T) { testReorderFiles(t, newStore(t)) })
	t.Run("update file rename", func(t *testing.T) { testUpdateFileRename(t, newStore(t)) })
	t.Run("update file move", func(t *testing.T) { testUpdateFileMove(t, newStore(t)) })
	t.Run("update file explicit order wins", func(t *testing.T) { testUpdateFileOrder(t, newStore(t)) })
	t.Run("delete file", func(t *testing.T) { testDeleteFile(t, newStore(t)) })
	t.Run("list all", func(t *testing.T) { testListAll(t, newStore(t)) })
	t.Run("negative size is rejected", func(t *testing.T) { testNegativeSize(t, newStore(t)) })
	t.Run("moved file ties follow arrival", func(t *testing.T) { testMovedFileTieBreak(t, newStore(t)) })
}

func testFolderUniqueness(t *testing.T, s store.Store) {
	ctx := context.Background()

	docs, err := s.CreateFolder(ctx, "Docs", model.Root())
	require.NoError(t, err)
	require.NotEmpty(t, docs.ID)
	require.True(t, docs.ParentID.IsRoot())
	require.False(t, docs.CreatedAt.IsZero())

	_, err = s.CreateFolder(ctx, "docs", model.Root())
	requireConflict(t, err, `Folder "docs" already exists in this directory`)

	nested, err := s.CreateFolder(ctx, "DOCS", model.InFolder(docs.ID))
	require.NoError(t, err)
	require.Equal(t, model.InFolder(docs.ID), nested.ParentID)

	roots, err := s.ListFolders(ctx, model.Root())
	require.NoError(t, err)
	require.Equal(t, []string{"Docs"}, folderNames(roots))

	children, err := s.ListFolders(ctx, model.InFolder(docs.ID))
	require.NoError(t, err)
	require.Equal(t, []string{"DOCS"}, folderNames(children))
}

func testCrossTypeConflicts(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.CreateFolder(ctx, "Docs", model.Root())
	require.NoError(t, err)

	_, err = s.CreateFile(ctx, "docs", model.Root(), 1)
	requireConflict(t, err, `A folder named "docs" already exists in this directory`)

	_, err = s.CreateFile(ctx, "Report", model.Root(), 1)
	require.NoError(t, err)

	_, err = s.CreateFolder(ctx, "REPORT", model.Root())
	requireConflict(t, err, `A file named "REPORT" already exists in this directory`)

	_, err = s.CreateFile(ctx, "report", model.Root(), 1)
	requireConflict(t, err, `File "report" already exists in this directory`)

	// Same names in another directory are fine.
	other, err := s.CreateFolder(ctx, "Other", model.Root())
	require.NoError(t, err)
	_, err = s.CreateFolder(ctx, "Report", model.InFolder(other.ID))
	require.NoError(t, err)
	_, err = s.CreateFile(ctx, "Docs", model.InFolder(other.ID), 1)
	require.NoError(t, err)
}

func testRenameFolder(t *testing.T, s store.Store) {
	ctx := context.Background()

	a, err := s.CreateFolder(ctx, "A", model.Root())
	require.NoError(t, err)
	_, err = s.CreateFolder(ctx, "B", model.Root())
	require.NoError(t, err)
	_, err = s.CreateFile(ctx, "c.txt", model.Root(), 0)
	require.NoError(t, err)

	renamed, err := s.RenameFolder(ctx, a.ID, "a")
	require.NoError(t, err, "renaming to its own name must not conflict")
	require.Equal(t, "a", renamed.Name)
	require.Equal(t, a.ID, renamed.ID)

	_, err = s.RenameFolder(ctx, a.ID, "b")
	requireConflict(t, err, `Folder "b" already exists in this directory`)

	_, err = s.RenameFolder(ctx, a.ID, "C.TXT")
	requireConflict(t, err, `A file named "C.TXT" already exists in this directory`)

	_, err = s.RenameFolder(ctx, "missing", "x")
	require.ErrorIs(t, err, model.ErrFolderNotFound)

	roots, err := s.ListFolders(ctx, model.Root())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "B"}, folderNames(roots))
}

func testDeleteFolderCascade(t *testing.T, s store.Store) {
	ctx := context.Background()

	top, err := s.CreateFolder(ctx, "top", model.Root())
	require.NoError(t, err)
	mid, err := s.CreateFolder(ctx, "mid", model.InFolder(top.ID))
	require.NoError(t, err)
	leaf, err := s.CreateFolder(ctx, "leaf", model.InFolder(mid.ID))
	require.NoError(t, err)
	sibling, err := s.CreateFolder(ctx, "sibling", model.InFolder(top.ID))
	require.NoError(t, err)
	keep, err := s.CreateFolder(ctx, "keep", model.Root())
	require.NoError(t, err)

	for _, dir := range []model.Folder{top, mid, leaf, sibling} {
		_, err := s.CreateFile(ctx, "f-"+dir.Name, model.InFolder(dir.ID), 1)
		require.NoError(t, err)
	}
	kept, err := s.CreateFile(ctx, "kept.txt", model.InFolder(keep.ID), 1)
	require.NoError(t, err)
	rootFile, err := s.CreateFile(ctx, "root.txt", model.Root(), 1)
	require.NoError(t, err)

	require.NoError(t, s.DeleteFolder(ctx, top.ID))

	folders, err := s.ListAllFolders(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"keep"}, folderNames(folders))

	files, err := s.ListAllFiles(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{kept.ID, rootFile.ID}, fileIDs(files))

	// The name is free again once the folder is gone.
	_, err = s.CreateFolder(ctx, "top", model.Root())
	require.NoError(t, err)
}

func testDeleteUnknownFolder(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.CreateFolder(ctx, "stay", model.Root())
	require.NoError(t, err)

	require.NoError(t, s.DeleteFolder(ctx, "does-not-exist"))

	folders, err := s.ListAllFolders(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 1)
}

func testCreateFileOrder(t *testing.T, s store.Store) {
	ctx := context.Background()

	first, err := s.CreateFile(ctx, "a", model.Root(), 10)
	require.NoError(t, err)
	require.Equal(t, 0, first.Order)
	require.Equal(t, int64(10), first.Size)
	require.True(t, first.ParentID.IsRoot())

	second, err := s.CreateFile(ctx, "b", model.Root(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, second.Order)

	order := 7
	_, err = s.UpdateFile(ctx, second.ID, model.FilePatch{Order: &order})
	require.NoError(t, err)

	third, err := s.CreateFile(ctx, "c", model.Root(), 0)
	require.NoError(t, err)
	require.Equal(t, 8, third.Order)

	elsewhere, err := s.CreateFile(ctx, "a", model.InFolder("folder-x"), 0)
	require.NoError(t, err)
	require.Equal(t, 0, elsewhere.Order)
}

func testReorderFiles(t *testing.T, s store.Store) {
	ctx := context.Background()
	parent := model.InFolder("p1")

	a, err := s.CreateFile(ctx, "A", parent, 0)
	require.NoError(t, err)
	b, err := s.CreateFile(ctx, "B", parent, 0)
	require.NoError(t, err)
	c, err := s.CreateFile(ctx, "C", parent, 0)
	require.NoError(t, err)
	outsider, err := s.CreateFile(ctx, "D", model.Root(), 0)
	require.NoError(t, err)

	require.NoError(t, s.ReorderFiles(ctx, parent, []string{c.ID, a.ID, "unknown", outsider.ID, b.ID}))

	files, err := s.ListFiles(ctx, parent)
	require.NoError(t, err)
	require.Equal(t, []string{"C", "A", "B"}, fileNames(files))
	require.Equal(t, []int{0, 1, 4}, fileOrders(files))

	roots, err := s.ListFiles(ctx, model.Root())
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Equal(t, 0, roots[0].Order, "files outside the parent keep their order")
}

func testUpdateFileRename(t *testing.T, s store.Store) {
	ctx := context.Background()

	f, err := s.CreateFile(ctx, "a.txt", model.Root(), 1)
	require.NoError(t, err)
	_, err = s.CreateFile(ctx, "b.txt", model.Root(), 1)
	require.NoError(t, err)
	_, err = s.CreateFolder(ctx, "dir", model.Root())
	require.NoError(t, err)

	same := "A.TXT"
	renamed, err := s.UpdateFile(ctx, f.ID, model.FilePatch{Name: &same})
	require.NoError(t, err)
	require.Equal(t, "A.TXT", renamed.Name)
	require.Equal(t, f.Order, renamed.Order)

	taken := "B.txt"
	_, err = s.UpdateFile(ctx, f.ID, model.FilePatch{Name: &taken})
	requireConflict(t, err, `File "B.txt" already exists in this directory`)

	folderName := "Dir"
	_, err = s.UpdateFile(ctx, f.ID, model.FilePatch{Name: &folderName})
	requireConflict(t, err, `A folder named "Dir" already exists in this directory`)

	_, err = s.UpdateFile(ctx, "missing", model.FilePatch{Name: &same})
	require.ErrorIs(t, err, model.ErrFileNotFound)
}

func testUpdateFileMove(t *testing.T, s store.Store) {
	ctx := context.Background()
	dest := model.InFolder("folder2")

	for i, name := range []string{"x", "y", "z"} {
		created, err := s.CreateFile(ctx, name, dest, 0)
		require.NoError(t, err)
		order := i * 2
		_, err = s.UpdateFile(ctx, created.ID, model.FilePatch{Order: &order})
		require.NoError(t, err)
	}

	moving, err := s.CreateFile(ctx, "m", model.Root(), 0)
	require.NoError(t, err)

	moved, err := s.UpdateFile(ctx, moving.ID, model.FilePatch{Parent: &dest})
	require.NoError(t, err)
	require.Equal(t, dest, moved.ParentID)
	require.Equal(t, 5, moved.Order)

	roots, err := s.ListFiles(ctx, model.Root())
	require.NoError(t, err)
	require.Empty(t, roots)

	inDest, err := s.ListFiles(ctx, dest)
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y", "z", "m"}, fileNames(inDest))

	// Name clash in the target directory leaves the file where it was.
	clash, err := s.CreateFile(ctx, "X", model.Root(), 0)
	require.NoError(t, err)
	_, err = s.UpdateFile(ctx, clash.ID, model.FilePatch{Parent: &dest})
	requireConflict(t, err, `File "X" already exists in target folder`)

	roots, err = s.ListFiles(ctx, model.Root())
	require.NoError(t, err)
	require.Equal(t, []string{"X"}, fileNames(roots))

	// A folder of the same name in the target also blocks the move.
	_, err = s.CreateFolder(ctx, "sub", dest)
	require.NoError(t, err)
	sub, err := s.CreateFile(ctx, "SUB", model.Root(), 0)
	require.NoError(t, err)
	_, err = s.UpdateFile(ctx, sub.ID, model.FilePatch{Parent: &dest})
	requireConflict(t, err, `A folder named "SUB" already exists in target folder`)

	// Rename and move together check the new name in the target.
	newName := "fresh"
	root := model.Root()
	back, err := s.UpdateFile(ctx, moved.ID, model.FilePatch{Name: &newName, Parent: &root})
	require.NoError(t, err)
	require.Equal(t, "fresh", back.Name)
	require.True(t, back.ParentID.IsRoot())
}

func testUpdateFileOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	dest := model.InFolder("d")

	_, err := s.CreateFile(ctx, "one", dest, 0)
	require.NoError(t, err)
	f, err := s.CreateFile(ctx, "two", model.Root(), 0)
	require.NoError(t, err)

	order := 42
	moved, err := s.UpdateFile(ctx, f.ID, model.FilePatch{Parent: &dest, Order: &order})
	require.NoError(t, err)
	require.Equal(t, 42, moved.Order)
	require.Equal(t, dest, moved.ParentID)
}

func testDeleteFile(t *testing.T, s store.Store) {
	ctx := context.Background()

	f, err := s.CreateFile(ctx, "gone.txt", model.Root(), 3)
	require.NoError(t, err)

	require.NoError(t, s.DeleteFile(ctx, f.ID))
	require.NoError(t, s.DeleteFile(ctx, f.ID))

	files, err := s.ListFiles(ctx, model.Root())
	require.NoError(t, err)
	require.Empty(t, files)

	_, err = s.CreateFile(ctx, "gone.txt", model.Root(), 3)
	require.NoError(t, err)
}

func testListAll(t *testing.T, s store.Store) {
	ctx := context.Background()

	first, err := s.CreateFolder(ctx, "first", model.Root())
	require.NoError(t, err)
	_, err = s.CreateFolder(ctx, "second", model.InFolder(first.ID))
	require.NoError(t, err)
	_, err = s.CreateFolder(ctx, "third", model.Root())
	require.NoError(t, err)

	folders, err := s.ListAllFolders(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second", "third"}, folderNames(folders))

	_, err = s.CreateFile(ctx, "r1", model.Root(), 0)
	require.NoError(t, err)
	_, err = s.CreateFile(ctx, "f1", model.InFolder(first.ID), 0)
	require.NoError(t, err)
	r0, err := s.CreateFile(ctx, "r0", model.Root(), 0)
	require.NoError(t, err)
	require.NoError(t, s.ReorderFiles(ctx, model.Root(), []string{r0.ID}))

	files, err := s.ListAllFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 3)
	for i := 1; i < len(files); i++ {
		prev, cur := files[i-1], files[i]
		if prev.ParentID == cur.ParentID {
			require.LessOrEqual(t, prev.Order, cur.Order)
		} else {
			require.Less(t, prev.ParentID.Key(), cur.ParentID.Key())
		}
	}

	roots, err := s.ListFiles(ctx, model.Root())
	require.NoError(t, err)
	require.Equal(t, []string{"r1", "r0"}, fileNames(roots), "equal orders keep insertion order")
}

func testNegativeSize(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.CreateFile(ctx, "bad.bin", model.Root(), -1)
	require.ErrorIs(t, err, model.ErrNegativeSize)

	files, err := s.ListAllFiles(ctx)
	require.NoError(t, err)
	require.Empty(t, files)
}

func testMovedFileTieBreak(t *testing.T, s store.Store) {
	ctx := context.Background()
	dest := model.InFolder("dest")

	early, err := s.CreateFile(ctx, "early", model.Root(), 0)
	require.NoError(t, err)
	_, err = s.CreateFile(ctx, "resident", dest, 0)
	require.NoError(t, err)

	zero := 0
	_, err = s.UpdateFile(ctx, early.ID, model.FilePatch{Parent: &dest, Order: &zero})
	require.NoError(t, err)

	files, err := s.ListFiles(ctx, dest)
	require.NoError(t, err)
	require.Equal(t, []string{"resident", "early"}, fileNames(files))
}

func requireConflict(t *testing.T, err error, message string) {
	t.Helper()

	require.Error(t, err)
	require.True(t, errors.Is(err, model.ErrNameConflict), "expected name conflict, got %v", err)
	require.Equal(t, message, err.Error())
}

func folderNames(folders []model.Folder) []string {
	out := make([]string, 0, len(folders))
	for _, f := range folders {
		out = append(out, f.Name)
	}
	return out
}

func fileNames(files []model.File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}

func fileIDs(files []model.File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.ID)
	}
	return out
}

func fileOrders(files []model.File) []int {
	out := make([]int, 0, len(files))
	for _, f := range files {
		out = append(out, f.Order)
	}
	return out
}
