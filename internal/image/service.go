package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imagevault/service/internal/cache"
	"github.com/imagevault/service/internal/storage"
)

// cacheTTL bounds the staleness of the id→object-key mapping.
const cacheTTL = time.Hour

// ErrMetadataWrite is returned when the payload was stored but the metadata
// commit failed, leaving an orphaned object behind. The upload counts as
// failed even though bytes are durable.
var ErrMetadataWrite = errors.New("metadata write failed after object stored")

// Repository is the metadata store access the service depends on.
type Repository interface {
	Create(ctx context.Context, img *Image) (*Image, error)
	GetByID(ctx context.Context, id int64) (*Image, error)
	List(ctx context.Context) ([]Image, error)
	Delete(ctx context.Context, id int64) error
}

// Service coordinates validation and the three backends. Writes are ordered
// so the object store is written first and the metadata row is the
// authoritative existence marker; there is no cross-backend transaction, so
// partial-failure states are logged for offline reconciliation instead of
// rolled back.
type Service struct {
	repo    Repository
	store   storage.Storage
	cache   cache.Cache
	log     *zap.Logger
	timeout time.Duration
}

// NewService creates a Service. timeout bounds each individual backend call.
func NewService(repo Repository, store storage.Storage, kv cache.Cache, log *zap.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{repo: repo, store: store, cache: kv, log: log, timeout: timeout}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("image:%d", id)
}

// Upload validates the payload, writes it to the object store under a fresh
// key, commits the metadata row, and populates the cache. Cache failure is
// non-fatal: the upload succeeds once object and metadata are durable.
func (s *Service) Upload(ctx context.Context, payload []byte, filename, mimeType string, ownerID *int64) (*Image, error) {
	ext, err := validateUpload(payload, filename)
	if err != nil {
		return nil, err
	}

	storedName := uuid.New().String() + "." + ext
	objectKey := "uploads/" + storedName

	putCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Put(putCtx, objectKey, bytes.NewReader(payload), int64(len(payload)), mimeType); err != nil {
		return nil, fmt.Errorf("store payload: %w", err)
	}

	createCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	img, err := s.repo.Create(createCtx, &Image{
		StoredName:   storedName,
		OriginalName: filename,
		SizeBytes:    int64(len(payload)),
		MimeType:     mimeType,
		ObjectKey:    objectKey,
		OwnerID:      ownerID,
	})
	if err != nil {
		// The object is now orphaned. Log enough for offline
		// reconciliation; no automatic cleanup is attempted.
		s.log.Error("orphaned object: metadata commit failed after object store write",
			zap.String("object_key", objectKey),
			zap.String("backend", "database"),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrMetadataWrite, err)
	}

	s.cacheSet(ctx, img.ID, img.ObjectKey)

	s.log.Info("image uploaded",
		zap.Int64("id", img.ID),
		zap.String("object_key", img.ObjectKey),
		zap.Int64("size_bytes", img.SizeBytes))

	return img, nil
}

// Download returns the payload reader and metadata for id. A missing row is
// ErrNotFound; a missing object behind an existing row is
// storage.ErrObjectMissing, logged as metadata/object drift.
func (s *Service) Download(ctx context.Context, id int64) (io.ReadCloser, *Image, error) {
	getCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	img, err := s.repo.GetByID(getCtx, id)
	if err != nil {
		return nil, nil, err
	}

	// The cached mapping is advisory: a hit saves nothing beyond the key
	// lookup, and a stale entry within the TTL window is acceptable.
	objectKey := s.cachedKey(ctx, id, img.ObjectKey)

	objCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	body, err := s.store.Get(objCtx, objectKey)
	if errors.Is(err, storage.ErrObjectMissing) {
		s.log.Error("object missing for existing metadata record",
			zap.Int64("id", id),
			zap.String("object_key", objectKey),
			zap.String("backend", "object_store"))
		return nil, nil, storage.ErrObjectMissing
	}
	if err != nil {
		return nil, nil, fmt.Errorf("fetch payload: %w", err)
	}

	return body, img, nil
}

// List returns all metadata records, most recent first. Payloads are never
// included.
func (s *Service) List(ctx context.Context) ([]Image, error) {
	listCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.repo.List(listCtx)
}

// Delete removes the image. The object-store delete is best-effort: a
// failure leaves a dangling object but never blocks the metadata delete,
// which is what decides existence.
func (s *Service) Delete(ctx context.Context, id int64) error {
	getCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	img, err := s.repo.GetByID(getCtx, id)
	if err != nil {
		return err
	}

	objCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.Delete(objCtx, img.ObjectKey); err != nil {
		s.log.Warn("dangling object: object store delete failed",
			zap.Int64("id", id),
			zap.String("object_key", img.ObjectKey),
			zap.String("backend", "object_store"),
			zap.Error(err))
	}

	delCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.Delete(delCtx, id); err != nil {
		return err
	}

	s.cacheDelete(ctx, id)

	s.log.Info("image deleted",
		zap.Int64("id", id),
		zap.String("object_key", img.ObjectKey))

	return nil
}

// cacheSet populates the id→object-key mapping, best-effort.
func (s *Service) cacheSet(ctx context.Context, id int64, objectKey string) {
	setCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.cache.Set(setCtx, cacheKey(id), objectKey, cacheTTL); err != nil {
		s.log.Warn("cache populate failed",
			zap.Int64("id", id),
			zap.String("backend", "cache"),
			zap.Error(err))
	}
}

// cachedKey resolves the object key through the cache, falling back to the
// authoritative key from the metadata record and repopulating on a miss.
func (s *Service) cachedKey(ctx context.Context, id int64, authoritative string) string {
	getCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	key, err := s.cache.Get(getCtx, cacheKey(id))
	if err == nil && key != "" {
		return key
	}
	if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		s.log.Warn("cache read failed",
			zap.Int64("id", id),
			zap.String("backend", "cache"),
			zap.Error(err))
		return authoritative
	}
	s.cacheSet(ctx, id, authoritative)
	return authoritative
}

// cacheDelete invalidates the mapping for id, best-effort.
func (s *Service) cacheDelete(ctx context.Context, id int64) {
	delCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.cache.Delete(delCtx, cacheKey(id)); err != nil {
		s.log.Warn("cache invalidate failed",
			zap.Int64("id", id),
			zap.String("backend", "cache"),
			zap.Error(err))
	}
}
