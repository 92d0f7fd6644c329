package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
	"github.com/sandeepkv93/estate-admin-backend/internal/storage"
)

const (
	blobDeleteConcurrency = 4
	blobDeleteAttempts    = 2
)

// MediaWorkflow persists and removes media so that no committed row points at
// a missing blob. Uploads write blobs before the rows commit and delete them
// on rollback. Deletes commit the row removal first and only then delete the
// blobs, so a storage failure can leave an unreferenced blob but never a
// dangling row.
type MediaWorkflow struct {
	tx     repository.Transactor
	store  storage.ObjectStore
	logger *slog.Logger
}

func NewMediaWorkflow(tx repository.Transactor, store storage.ObjectStore, logger *slog.Logger) *MediaWorkflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaWorkflow{tx: tx, store: store, logger: logger}
}

// Upload stores the staged files for owner. Staged files are always removed.
// On failure the rows roll back and blobs written by this call are deleted.
func (w *MediaWorkflow) Upload(ctx context.Context, owner domain.MediaOwner, files []storage.StagedFile) ([]domain.Media, error) {
	ctx, span := observability.StartSpan(ctx, "media.upload",
		attribute.String("media.owner", owner.String()), attribute.Int("media.files", len(files)))
	defer span.End()
	defer w.removeStaged(ctx, files)

	if len(files) == 0 {
		observability.RecordMediaOperation(ctx, string(owner.Kind), "upload", "bad_request", 0)
		return nil, badRequest("No images provided")
	}

	var (
		written []string
		created []domain.Media
		bytes   int64
	)
	err := w.tx.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if err := ownerMustExist(ctx, repos, owner); err != nil {
			return err
		}
		for _, f := range files {
			key := storage.ObjectKey(string(owner.Kind), owner.ID, f.FileName)
			if err := w.putStaged(ctx, key, f); err != nil {
				return err
			}
			written = append(written, key)

			m := domain.Media{
				FileName:     f.FileName,
				FilePath:     key,
				MimeType:     f.MimeType,
				Size:         f.Size,
				OriginalName: f.OriginalName,
			}
			m.SetOwner(owner)
			if err := repos.Media.Create(ctx, &m); err != nil {
				return fmt.Errorf("insert media %s: %w", f.OriginalName, err)
			}
			created = append(created, m)
			bytes += f.Size
		}
		return nil
	})
	if err != nil {
		w.releaseBlobs(ctx, owner.Kind, written)
		observability.RecordMediaOperation(ctx, string(owner.Kind), "upload", outcomeOf(err), len(files))
		return nil, asServiceError(err, "Upload failed")
	}

	observability.RecordMediaOperation(ctx, string(owner.Kind), "upload", "success", len(created))
	observability.RecordMediaUploadedBytes(ctx, string(owner.Kind), bytes)
	w.AttachURLs(ctx, created)
	return created, nil
}

// DeleteImage removes one media record of owner together with its blob.
func (w *MediaWorkflow) DeleteImage(ctx context.Context, owner domain.MediaOwner, mediaID string) error {
	ctx, span := observability.StartSpan(ctx, "media.delete_image",
		attribute.String("media.owner", owner.String()), attribute.String("media.id", mediaID))
	defer span.End()

	var key string
	err := w.tx.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if err := ownerMustExist(ctx, repos, owner); err != nil {
			return err
		}
		m, err := repos.Media.FindByID(ctx, mediaID)
		if err != nil {
			if errors.Is(err, repository.ErrMediaNotFound) {
				return notFound("Image not found")
			}
			return err
		}
		if !m.OwnedBy(owner) {
			return notFound("Image not found")
		}
		if err := repos.Media.Delete(ctx, m.ID); err != nil {
			return err
		}
		key = m.FilePath
		return nil
	})
	observability.RecordMediaOperation(ctx, string(owner.Kind), "delete_image", outcomeOf(err), 1)
	if err != nil {
		return asServiceError(err, "Image could not be deleted")
	}
	w.releaseBlobs(ctx, owner.Kind, []string{key})
	return nil
}

// DeleteArea soft-deletes the area and its properties and removes every media
// row and blob that belongs to any of them.
func (w *MediaWorkflow) DeleteArea(ctx context.Context, areaID string) error {
	ctx, span := observability.StartSpan(ctx, "media.delete_area", attribute.String("area.id", areaID))
	defer span.End()

	var medias []domain.Media
	err := w.tx.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if err := ownerMustExist(ctx, repos, domain.AreaOwner(areaID)); err != nil {
			return err
		}
		propertyIDs, err := repos.Properties.IDsByAreaID(ctx, areaID)
		if err != nil {
			return err
		}
		medias, err = repos.Media.ListForArea(ctx, areaID, propertyIDs)
		if err != nil {
			return err
		}
		if _, err := repos.Media.DeleteByIDs(ctx, mediaIDs(medias)); err != nil {
			return err
		}
		if _, err := repos.Properties.DeleteByAreaID(ctx, areaID); err != nil {
			return err
		}
		return repos.Areas.Delete(ctx, areaID)
	})
	observability.RecordMediaOperation(ctx, string(domain.OwnerArea), "delete_owner", outcomeOf(err), len(medias))
	if err != nil {
		return asServiceError(err, "Area could not be deleted")
	}
	w.releaseBlobs(ctx, domain.OwnerArea, mediaKeys(medias))
	return nil
}

// DeleteProperty soft-deletes the property and removes its media.
func (w *MediaWorkflow) DeleteProperty(ctx context.Context, propertyID string) error {
	ctx, span := observability.StartSpan(ctx, "media.delete_property", attribute.String("property.id", propertyID))
	defer span.End()

	var medias []domain.Media
	err := w.tx.WithinTransaction(ctx, func(repos repository.Repositories) error {
		owner := domain.PropertyOwner(propertyID)
		if err := ownerMustExist(ctx, repos, owner); err != nil {
			return err
		}
		var err error
		medias, err = repos.Media.ListByOwner(ctx, owner)
		if err != nil {
			return err
		}
		if _, err := repos.Media.DeleteByIDs(ctx, mediaIDs(medias)); err != nil {
			return err
		}
		return repos.Properties.Delete(ctx, propertyID)
	})
	observability.RecordMediaOperation(ctx, string(domain.OwnerProperty), "delete_owner", outcomeOf(err), len(medias))
	if err != nil {
		return asServiceError(err, "Property could not be deleted")
	}
	w.releaseBlobs(ctx, domain.OwnerProperty, mediaKeys(medias))
	return nil
}

// AttachURLs fills the URL of each media item; failures leave it empty.
func (w *MediaWorkflow) AttachURLs(ctx context.Context, items []domain.Media) {
	for i := range items {
		url, err := w.store.URL(ctx, items[i].FilePath)
		if err != nil {
			w.logger.WarnContext(ctx, "media url unavailable", "media_id", items[i].ID, "error", err)
			continue
		}
		items[i].URL = url
	}
}

func (w *MediaWorkflow) putStaged(ctx context.Context, key string, f storage.StagedFile) error {
	fh, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open staged %s: %w", f.FileName, err)
	}
	defer fh.Close()
	if err := w.store.Put(ctx, key, fh, f.Size, f.MimeType); err != nil {
		return err
	}
	return nil
}

func (w *MediaWorkflow) deleteBlob(ctx context.Context, key string) error {
	if err := w.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return err
	}
	return nil
}

// releaseBlobs deletes blobs that no committed row references. Each
// key gets blobDeleteAttempts tries; keys that still fail are logged as
// orphans and reported in the returned slice.
func (w *MediaWorkflow) releaseBlobs(ctx context.Context, kind domain.OwnerKind, keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	failed := make([]error, len(keys))
	var g errgroup.Group
	g.SetLimit(blobDeleteConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			for range blobDeleteAttempts {
				if failed[i] = w.deleteBlob(ctx, key); failed[i] == nil {
					break
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var orphans []string
	for i, err := range failed {
		if err != nil {
			orphans = append(orphans, keys[i])
			w.logger.WarnContext(ctx, "orphaned media blob", "key", keys[i], "error", err)
		}
	}
	if len(orphans) > 0 {
		observability.RecordMediaOperation(ctx, string(kind), "orphan_blob", "error", len(orphans))
	}
	return orphans
}

func (w *MediaWorkflow) removeStaged(ctx context.Context, files []storage.StagedFile) {
	if err := storage.RemoveStaged(files); err != nil {
		w.logger.WarnContext(ctx, "staged upload cleanup failed", "error", err)
	}
}

func ownerMustExist(ctx context.Context, repos repository.Repositories, owner domain.MediaOwner) error {
	var (
		exists bool
		err    error
		label  string
	)
	switch owner.Kind {
	case domain.OwnerArea:
		exists, err = repos.Areas.Exists(ctx, owner.ID)
		label = "Area"
	case domain.OwnerProperty:
		exists, err = repos.Properties.Exists(ctx, owner.ID)
		label = "Property"
	default:
		return badRequest("Unknown media owner")
	}
	if err != nil {
		return err
	}
	if !exists {
		return notFound(label + " not found")
	}
	return nil
}

func mediaIDs(items []domain.Media) []string {
	ids := make([]string, 0, len(items))
	for _, m := range items {
		ids = append(ids, m.ID)
	}
	return ids
}

func mediaKeys(items []domain.Media) []string {
	keys := make([]string, 0, len(items))
	for _, m := range items {
		keys = append(keys, m.FilePath)
	}
	return keys
}

// asServiceError keeps service errors and wraps anything else as internal.
func asServiceError(err error, msg string) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return internal(msg, err)
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	return string(KindOf(err))
}
