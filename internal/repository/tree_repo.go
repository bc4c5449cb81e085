package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-file-tree/internal/model"
)

// TreeRepository is a store.Store backed by PostgreSQL. Mutations run in a
// transaction holding an advisory lock per affected directory, so the sibling
// name check and the write cannot interleave with another writer.
type TreeRepository struct {
	pool  *pgxpool.Pool
	now   func() time.Time
	newID func() string
}

func NewTreeRepository(pool *pgxpool.Pool) *TreeRepository {
	return &TreeRepository{
		pool:  pool,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	folderColumns = `id, name, parent_id, created_at`
	fileColumns   = `id, name, parent_id, size, sort_order, created_at`
)

func (r *TreeRepository) ListFolders(ctx context.Context, parent model.DirRef) ([]model.Folder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE parent_id = $1 ORDER BY seq`, parent.Key())
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	return collectFolders(rows)
}

func (r *TreeRepository) ListAllFolders(ctx context.Context) ([]model.Folder, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+folderColumns+` FROM folders ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list all folders: %w", err)
	}

	return collectFolders(rows)
}

func (r *TreeRepository) CreateFolder(ctx context.Context, name string, parent model.DirRef) (model.Folder, error) {
	folder := model.Folder{
		ID:        r.newID(),
		Name:      name,
		ParentID:  parent,
		CreatedAt: r.now(),
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockDirs(ctx, tx, parent); err != nil {
			return err
		}
		if err := checkSiblingNames(ctx, tx, parent, name, "", model.KindFolder, false); err != nil {
			return err
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO folders (id, name, parent_id, created_at) VALUES ($1, $2, $3, $4)`,
			folder.ID, folder.Name, parent.Key(), folder.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert folder: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Folder{}, err
	}

	return folder, nil
}

func (r *TreeRepository) RenameFolder(ctx context.Context, id string, newName string) (model.Folder, error) {
	var folder model.Folder

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanFolder(tx.QueryRow(ctx,
			`SELECT `+folderColumns+` FROM folders WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrFolderNotFound
		}
		if err != nil {
			return fmt.Errorf("find folder: %w", err)
		}

		if err := lockDirs(ctx, tx, current.ParentID); err != nil {
			return err
		}
		if err := checkSiblingNames(ctx, tx, current.ParentID, newName, id, model.KindFolder, false); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `UPDATE folders SET name = $2 WHERE id = $1`, id, newName); err != nil {
			return fmt.Errorf("rename folder: %w", err)
		}

		current.Name = newName
		folder = current
		return nil
	})
	if err != nil {
		return model.Folder{}, err
	}

	return folder, nil
}

func (r *TreeRepository) DeleteFolder(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			WITH RECURSIVE tree AS (
				SELECT id FROM folders WHERE id = $1
				UNION ALL
				SELECT f.id FROM folders f JOIN tree t ON f.parent_id = t.id
			)
			SELECT id FROM tree`, id)
		if err != nil {
			return fmt.Errorf("collect descendant folders: %w", err)
		}

		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return fmt.Errorf("scan descendant folders: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		if _, err := tx.Exec(ctx, `DELETE FROM files WHERE parent_id = ANY($1)`, ids); err != nil {
			return fmt.Errorf("delete files under folder: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM folders WHERE id = ANY($1)`, ids); err != nil {
			return fmt.Errorf("delete folders: %w", err)
		}
		return nil
	})
}

func (r *TreeRepository) ListFiles(ctx context.Context, parent model.DirRef) ([]model.File, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fileColumns+` FROM files WHERE parent_id = $1 ORDER BY sort_order, seq`, parent.Key())
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return collectFiles(rows)
}

func (r *TreeRepository) ListAllFiles(ctx context.Context) ([]model.File, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fileColumns+` FROM files ORDER BY parent_id COLLATE "C", sort_order, seq`)
	if err != nil {
		return nil, fmt.Errorf("list all files: %w", err)
	}

	return collectFiles(rows)
}

func (r *TreeRepository) CreateFile(ctx context.Context, name string, parent model.DirRef, size int64) (model.File, error) {
	if size < 0 {
		return model.File{}, model.ErrNegativeSize
	}

	file := model.File{
		ID:        r.newID(),
		Name:      name,
		ParentID:  parent,
		Size:      size,
		CreatedAt: r.now(),
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockDirs(ctx, tx, parent); err != nil {
			return err
		}
		if err := checkSiblingNames(ctx, tx, parent, name, "", model.KindFile, false); err != nil {
			return err
		}

		highest, err := maxOrder(ctx, tx, parent, "")
		if err != nil {
			return err
		}
		file.Order = highest + 1

		_, err = tx.Exec(ctx,
			`INSERT INTO files (id, name, parent_id, size, sort_order, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			file.ID, file.Name, parent.Key(), file.Size, file.Order, file.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert file: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.File{}, err
	}

	return file, nil
}

func (r *TreeRepository) UpdateFile(ctx context.Context, id string, patch model.FilePatch) (model.File, error) {
	var file model.File

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanFile(tx.QueryRow(ctx,
			`SELECT `+fileColumns+` FROM files WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrFileNotFound
		}
		if err != nil {
			return fmt.Errorf("find file: %w", err)
		}

		dirs := []model.DirRef{current.ParentID}
		if patch.Parent != nil {
			dirs = append(dirs, *patch.Parent)
		}
		if err := lockDirs(ctx, tx, dirs...); err != nil {
			return err
		}

		next := current
		if patch.Name != nil {
			if err := checkSiblingNames(ctx, tx, next.ParentID, *patch.Name, id, model.KindFile, false); err != nil {
				return err
			}
			next.Name = *patch.Name
		}

		if patch.Parent != nil {
			dest := *patch.Parent
			if err := checkSiblingNames(ctx, tx, dest, next.Name, id, model.KindFile, true); err != nil {
				return err
			}
			highest, err := maxOrder(ctx, tx, dest, id)
			if err != nil {
				return err
			}
			next.Order = highest + 1
			next.ParentID = dest
		}

		if patch.Order != nil {
			next.Order = *patch.Order
		}

		// A reparented file takes a fresh seq in its new directory.
		_, err = tx.Exec(ctx,
			`UPDATE files
			 SET name = $2, parent_id = $3, sort_order = $4,
			     seq = CASE WHEN parent_id <> $3 THEN nextval(pg_get_serial_sequence('files', 'seq')) ELSE seq END
			 WHERE id = $1`,
			id, next.Name, next.ParentID.Key(), next.Order)
		if err != nil {
			return fmt.Errorf("update file: %w", err)
		}

		file = next
		return nil
	})
	if err != nil {
		return model.File{}, err
	}

	return file, nil
}

func (r *TreeRepository) ReorderFiles(ctx context.Context, parent model.DirRef, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockDirs(ctx, tx, parent); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for index, id := range orderedIDs {
			batch.Queue(`UPDATE files SET sort_order = $1 WHERE id = $2 AND parent_id = $3`,
				index, id, parent.Key())
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("reorder files: %w", err)
		}
		return nil
	})
}

func (r *TreeRepository) DeleteFile(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	return nil
}

// lockDirs takes transaction-scoped advisory locks on each directory in a
// stable order.
func lockDirs(ctx context.Context, q querier, dirs ...model.DirRef) error {
	keys := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		keys = append(keys, dir.Key())
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	for _, key := range keys {
		if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("lock directory %q: %w", key, err)
		}
	}

	return nil
}

var tableByKind = map[model.EntryKind]string{
	model.KindFolder: "folders",
	model.KindFile:   "files",
}

// checkSiblingNames looks for a same-kind clash first, then the other kind.
// excludeID only applies to entries of the incoming kind.
func checkSiblingNames(ctx context.Context, q querier, dir model.DirRef, name string, excludeID string, incoming model.EntryKind, inTarget bool) error {
	kinds := []model.EntryKind{model.KindFolder, model.KindFile}
	if incoming == model.KindFile {
		kinds = []model.EntryKind{model.KindFile, model.KindFolder}
	}

	for _, kind := range kinds {
		exclude := ""
		if kind == incoming {
			exclude = excludeID
		}

		var taken bool
		err := q.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM `+tableByKind[kind]+`
			 WHERE parent_id = $1 AND lower(name) = lower($2) AND id <> $3)`,
			dir.Key(), name, exclude).Scan(&taken)
		if err != nil {
			return fmt.Errorf("check %s names: %w", kind, err)
		}

		if taken {
			return model.NewNameConflict(kind, incoming, name, inTarget)
		}
	}

	return nil
}

func maxOrder(ctx context.Context, q querier, dir model.DirRef, excludeID string) (int, error) {
	var highest int
	err := q.QueryRow(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) FROM files WHERE parent_id = $1 AND id <> $2`,
		dir.Key(), excludeID).Scan(&highest)
	if err != nil {
		return 0, fmt.Errorf("max file order: %w", err)
	}

	return highest, nil
}

func scanFolder(row pgx.Row) (model.Folder, error) {
	var f model.Folder
	var parent string
	if err := row.Scan(&f.ID, &f.Name, &parent, &f.CreatedAt); err != nil {
		return model.Folder{}, err
	}

	f.ParentID = model.InFolder(parent)
	f.CreatedAt = f.CreatedAt.UTC()
	return f, nil
}

func scanFile(row pgx.Row) (model.File, error) {
	var f model.File
	var parent string
	if err := row.Scan(&f.ID, &f.Name, &parent, &f.Size, &f.Order, &f.CreatedAt); err != nil {
		return model.File{}, err
	}

	f.ParentID = model.InFolder(parent)
	f.CreatedAt = f.CreatedAt.UTC()
	return f, nil
}

func collectFolders(rows pgx.Rows) ([]model.Folder, error) {
	folders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Folder, error) {
		return scanFolder(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan folders: %w", err)
	}

	return folders, nil
}

func collectFiles(rows pgx.Rows) ([]model.File, error) {
	files, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.File, error) {
		return scanFile(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan files: %w", err)
	}

	return files, nil
}
