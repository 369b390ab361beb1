// Package upload receives translation-memory files posted by clients and
// hands them to the object store. Bodies arrive as a ZIP archive, as a
// multipart form with a "file" part, or raw.
package upload

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"strings"

	"github.com/dmitrijs2005/remotetm/internal/common"
	"github.com/dmitrijs2005/remotetm/internal/server/storage"
)

var ErrTooLarge = fmt.Errorf("%w: upload too large", common.ErrorInvalidArgument)

type Receiver struct {
	store   storage.ObjectStore
	tmpDir  string
	maxSize int64
	newKey  func(name string) string
}

// NewReceiver spools uploads in tmpDir (the system default when empty) and
// rejects bodies larger than maxSize bytes.
func NewReceiver(store storage.ObjectStore, tmpDir string, maxSize int64) *Receiver {
	return &Receiver{store: store, tmpDir: tmpDir, maxSize: maxSize, newKey: storage.NewKey}
}

// Receive stores the uploaded file and returns its key. For archives every
// entry is stored under its base name and the key of the last one is
// returned.
func (r *Receiver) Receive(ctx context.Context, contentType string, body io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = ""
	}

	switch {
	case mediaType == "application/zip" || mediaType == "application/x-zip-compressed":
		return r.receiveZip(ctx, body)
	case mediaType == "multipart/form-data":
		if params["boundary"] == "" {
			return "", fmt.Errorf("%w: missing multipart boundary", common.ErrorInvalidArgument)
		}
		return r.receiveMultipart(ctx, multipart.NewReader(body, params["boundary"]))
	default:
		return r.put(ctx, "upload.tmx", body)
	}
}

// spool copies src into a temporary file, enforcing the size limit. The
// caller removes the file.
func (r *Receiver) spool(src io.Reader) (*os.File, int64, error) {
	f, err := os.CreateTemp(r.tmpDir, "uploaded-*")
	if err != nil {
		return nil, 0, err
	}

	n, err := io.Copy(f, io.LimitReader(src, r.maxSize+1))
	if err == nil && n > r.maxSize {
		err = ErrTooLarge
	}
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, 0, err
	}
	return f, n, nil
}

func (r *Receiver) put(ctx context.Context, name string, src io.Reader) (string, error) {
	f, _, err := r.spool(src)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	key := r.newKey(name)
	if err := r.store.Put(ctx, key, f); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return key, nil
}

func (r *Receiver) receiveZip(ctx context.Context, body io.Reader) (string, error) {
	f, size, err := r.spool(body)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	// Entry paths are reduced to base names, so insecure paths are harmless.
	zr, err := zip.NewReader(f, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return "", fmt.Errorf("%w: %w", common.ErrorInvalidArgument, err)
	}

	var stored []string
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := path.Base(strings.ReplaceAll(entry.Name, "\\", "/"))

		key, err := r.putEntry(ctx, name, entry)
		if err != nil {
			r.discard(ctx, stored)
			return "", err
		}
		stored = append(stored, key)
	}

	if len(stored) == 0 {
		return "", fmt.Errorf("%w: empty archive", common.ErrorInvalidArgument)
	}
	return stored[len(stored)-1], nil
}

func (r *Receiver) putEntry(ctx context.Context, name string, entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInvalidArgument, err)
	}
	defer rc.Close()
	return r.put(ctx, name, rc)
}

// discard removes the objects of an archive that failed part way. Cleanup
// runs even when ctx is already cancelled.
func (r *Receiver) discard(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		_ = r.store.Delete(ctx, key)
	}
}

func (r *Receiver) receiveMultipart(ctx context.Context, mr *multipart.Reader) (string, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: no file part", common.ErrorInvalidArgument)
		}
		if err != nil {
			return "", fmt.Errorf("%w: %w", common.ErrorInvalidArgument, err)
		}

		if part.FormName() != "file" && part.FileName() == "" {
			_ = part.Close()
			continue
		}

		name := part.FileName()
		if name == "" {
			name = "upload.tmx"
		}
		key, err := r.put(ctx, name, part)
		_ = part.Close()
		return key, err
	}
}
