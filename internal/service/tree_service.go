package service

import (
	"context"
	"log/slog"

	"go-file-tree/internal/event"
	"go-file-tree/internal/metrics"
	"go-file-tree/internal/model"
	"go-file-tree/internal/store"
	"go-file-tree/internal/util"
)

// TreeService fronts a store.Store: it normalizes names, records metrics and
// publishes a change event for every successful mutation.
type TreeService struct {
	store   store.Store
	bus     event.Bus
	metrics *metrics.Metrics
}

func NewTreeService(store store.Store, bus event.Bus, metrics *metrics.Metrics) *TreeService {
	return &TreeService{store: store, bus: bus, metrics: metrics}
}

type deletedPayload struct {
	ID string `json:"id"`
}

type reorderedPayload struct {
	ParentID   string   `json:"parentId"`
	OrderedIDs []string `json:"orderedIds"`
}

func (s *TreeService) ListFolders(ctx context.Context, parent model.DirRef) ([]model.Folder, error) {
	return s.store.ListFolders(ctx, parent)
}

func (s *TreeService) ListAllFolders(ctx context.Context) ([]model.Folder, error) {
	return s.store.ListAllFolders(ctx)
}

func (s *TreeService) CreateFolder(ctx context.Context, name string, parent model.DirRef) (model.Folder, error) {
	safeName, err := util.NormalizeName(name)
	if err != nil {
		return model.Folder{}, err
	}

	folder, err := s.store.CreateFolder(ctx, safeName, parent)
	s.metrics.ObserveTreeOp("create_folder", err)
	if err != nil {
		return model.Folder{}, err
	}

	slog.Info("folder created", "id", folder.ID, "name", folder.Name, "parent", folder.ParentID)
	s.publish(event.TypeFolderCreated, folder)
	return folder, nil
}

func (s *TreeService) RenameFolder(ctx context.Context, id string, newName string) (model.Folder, error) {
	safeName, err := util.NormalizeName(newName)
	if err != nil {
		return model.Folder{}, err
	}

	folder, err := s.store.RenameFolder(ctx, id, safeName)
	s.metrics.ObserveTreeOp("rename_folder", err)
	if err != nil {
		return model.Folder{}, err
	}

	slog.Info("folder renamed", "id", folder.ID, "name", folder.Name)
	s.publish(event.TypeFolderRenamed, folder)
	return folder, nil
}

func (s *TreeService) DeleteFolder(ctx context.Context, id string) error {
	err := s.store.DeleteFolder(ctx, id)
	s.metrics.ObserveTreeOp("delete_folder", err)
	if err != nil {
		return err
	}

	slog.Info("folder deleted", "id", id)
	s.publish(event.TypeFolderDeleted, deletedPayload{ID: id})
	return nil
}

func (s *TreeService) ListFiles(ctx context.Context, parent model.DirRef) ([]model.File, error) {
	return s.store.ListFiles(ctx, parent)
}

func (s *TreeService) ListAllFiles(ctx context.Context) ([]model.File, error) {
	return s.store.ListAllFiles(ctx)
}

func (s *TreeService) CreateFile(ctx context.Context, name string, parent model.DirRef, size int64) (model.File, error) {
	safeName, err := util.NormalizeName(name)
	if err != nil {
		return model.File{}, err
	}

	file, err := s.store.CreateFile(ctx, safeName, parent, size)
	s.metrics.ObserveTreeOp("create_file", err)
	if err != nil {
		return model.File{}, err
	}

	slog.Info("file created", "id", file.ID, "name", file.Name, "parent", file.ParentID, "order", file.Order)
	s.publish(event.TypeFileCreated, file)
	return file, nil
}

func (s *TreeService) UpdateFile(ctx context.Context, id string, patch model.FilePatch) (model.File, error) {
	if patch.Name != nil {
		safeName, err := util.NormalizeName(*patch.Name)
		if err != nil {
			return model.File{}, err
		}
		patch.Name = &safeName
	}

	file, err := s.store.UpdateFile(ctx, id, patch)
	s.metrics.ObserveTreeOp("update_file", err)
	if err != nil {
		return model.File{}, err
	}

	slog.Info("file updated", "id", file.ID, "name", file.Name, "parent", file.ParentID, "order", file.Order)
	s.publish(event.TypeFileUpdated, file)
	return file, nil
}

func (s *TreeService) ReorderFiles(ctx context.Context, parent model.DirRef, orderedIDs []string) error {
	err := s.store.ReorderFiles(ctx, parent, orderedIDs)
	s.metrics.ObserveTreeOp("reorder_files", err)
	if err != nil {
		return err
	}

	slog.Info("files reordered", "parent", parent, "count", len(orderedIDs))
	s.publish(event.TypeFilesReordered, reorderedPayload{ParentID: parent.Key(), OrderedIDs: orderedIDs})
	return nil
}

func (s *TreeService) DeleteFile(ctx context.Context, id string) error {
	err := s.store.DeleteFile(ctx, id)
	s.metrics.ObserveTreeOp("delete_file", err)
	if err != nil {
		return err
	}

	slog.Info("file deleted", "id", id)
	s.publish(event.TypeFileDeleted, deletedPayload{ID: id})
	return nil
}

func (s *TreeService) publish(eventType event.Type, payload any) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(event.Event{Type: eventType, Payload: payload})
}
