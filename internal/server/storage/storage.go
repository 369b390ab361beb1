// Package storage keeps uploaded files, either in a local directory or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ObjectStore is the minimal blob API used by the upload endpoint. Delete
// discards objects of an upload that failed part way.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh, date-partitioned key ending in the base name of
// fileName.
func NewKey(fileName string) string {
	d := time.Now().UTC()
	name := path.Base("/" + fileName)
	if name == "/" || name == "." {
		name = "upload"
	}
	return fmt.Sprintf("uploads/%04d/%02d/%02d/%s/%s", d.Year(), d.Month(), d.Day(), uuid.NewString(), name)
}
