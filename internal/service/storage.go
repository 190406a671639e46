package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/mdemena/lists-sharing-sub000/internal/authz"
	"github.com/mdemena/lists-sharing-sub000/internal/metrics"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
	"github.com/mdemena/lists-sharing-sub000/internal/objectstore"
)

// ObjectStore keeps uploaded files.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Upload is a stored file.
type Upload struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// imageExtensions maps accepted image types to the extension used in keys.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// StorageService stores item images under the uploader's prefix.
type StorageService struct {
	objects ObjectStore
	opts    Options
}

// Upload stores an image for the actor. The type is sniffed from the content,
// not taken from the client.
func (s *StorageService) Upload(ctx context.Context, actor *models.User, size int64, r io.Reader) (*Upload, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, invalid("file is empty")
	}
	if s.opts.MaxUploadBytes > 0 && size > s.opts.MaxUploadBytes {
		metrics.RecordUpload("too_large")
		return nil, invalid(fmt.Sprintf("file is larger than %d bytes", s.opts.MaxUploadBytes))
	}

	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok || !slices.Contains(s.opts.AllowedImageTypes, contentType) {
		metrics.RecordUpload("rejected_type")
		return nil, invalid("unsupported file type " + contentType)
	}

	var body io.Reader = br
	if s.opts.MaxUploadBytes > 0 {
		body = io.LimitReader(br, s.opts.MaxUploadBytes)
	}

	key := objectstore.NewKey(actor.ID, ext)
	if err := s.objects.Put(ctx, key, body); err != nil {
		metrics.RecordUpload("failed")
		return nil, upstream("failed to store file", err)
	}

	metrics.RecordUpload("ok")
	slog.Debug("image uploaded", "key", key, "user_id", actor.ID, "bytes", size)
	return &Upload{Path: key, URL: s.objects.URL(key)}, nil
}

// Delete removes one of the actor's files.
func (s *StorageService) Delete(ctx context.Context, actor *models.User, path string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := s.checkPath(actor, path); err != nil {
		return err
	}
	if err := s.objects.Delete(ctx, path); err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return notFound("file not found")
		}
		return upstream("failed to delete file", err)
	}
	return nil
}

// DeleteMany removes several of the actor's files. Nothing is deleted if any
// path is invalid or foreign; files already gone are skipped.
func (s *StorageService) DeleteMany(ctx context.Context, actor *models.User, paths []string) (int, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}
	if len(paths) == 0 {
		return 0, invalid("paths are required")
	}
	for _, p := range paths {
		if err := s.checkPath(actor, p); err != nil {
			return 0, err
		}
	}

	deleted := 0
	for _, p := range paths {
		err := s.objects.Delete(ctx, p)
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, objectstore.ErrObjectNotFound):
		default:
			return deleted, upstream("failed to delete file", err)
		}
	}
	return deleted, nil
}

func (s *StorageService) checkPath(actor *models.User, path string) error {
	if err := objectstore.ValidateKey(path); err != nil {
		return invalid("invalid path")
	}
	if err := authz.CanDeleteObject(actor.ID, path); err != nil {
		return forbidden(err)
	}
	return nil
}
