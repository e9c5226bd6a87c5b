package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/anonto42/snapgram/backend/internal/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BlobStore holds the raw bytes behind media references
type BlobStore interface {
	Put(ctx context.Context, ref, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
}

// GridFSBlobStore implements BlobStore on a MongoDB GridFS bucket
type GridFSBlobStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSBlobStore creates the "media" bucket in db
func NewGridFSBlobStore(db *mongo.Database) (*GridFSBlobStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("media"))
	if err != nil {
		return nil, fmt.Errorf("create gridfs bucket: %w", err)
	}
	return &GridFSBlobStore{bucket: bucket}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Put stores the stream under ref, using ref as the GridFS file id
func (s *GridFSBlobStore) Put(ctx context.Context, ref, contentType string, r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "content_type", Value: contentType}})
	if err := s.bucket.UploadFromStreamWithID(ref, ref, cr, opts); err != nil {
		return 0, fmt.Errorf("upload %s: %w", ref, err)
	}
	return cr.n, nil
}

func (s *GridFSBlobStore) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	stream, err := s.bucket.OpenDownloadStream(ref)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, apperr.MediaNotFound(ref)
		}
		return nil, fmt.Errorf("open %s: %w", ref, err)
	}
	return stream, nil
}

// Delete removes the object; a missing object is not an error
func (s *GridFSBlobStore) Delete(ctx context.Context, ref string) error {
	if err := s.bucket.Delete(ref); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("delete %s: %w", ref, err)
	}
	return nil
}
