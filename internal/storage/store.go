// Package storage persists the ledger snapshot as a single JSON value in a
// gocloud.dev blob bucket and handles backup export and import.
//
// The bucket is chosen by URL (file://, mem://, s3://, gs:// and so on) or
// defaults to a local directory. Loading never fails: an absent, unreadable
// or malformed snapshot yields the default data so the application can
// always start.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	"agroledger/internal/logger"
	"agroledger/pkg/models"
)

// Repository reads and writes the snapshot under Key.
type Repository struct {
	bucket *blob.Bucket
	key    string
	log    zerolog.Logger
}

// Open opens the snapshot bucket. storeURL wins when set; otherwise a
// directory bucket is created at dataDir.
func Open(ctx context.Context, storeURL, dataDir string) (*Repository, error) {
	const op = "Open"

	var (
		bucket *blob.Bucket
		err    error
	)
	if storeURL != "" {
		bucket, err = blob.OpenBucket(ctx, storeURL)
	} else {
		bucket, err = fileblob.OpenBucket(dataDir, &fileblob.Options{CreateDir: true})
	}
	if err != nil {
		return nil, WrapStorageError(op, "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err), "")
	}

	r := NewRepository(bucket)
	r.log.Debug().Str("store_url", storeURL).Str("data_dir", dataDir).Msg("Snapshot store opened")
	return r, nil
}

// NewRepository wraps an already opened bucket.
func NewRepository(bucket *blob.Bucket) *Repository {
	return &Repository{
		bucket: bucket,
		key:    Key,
		log:    logger.WithComponent("storage"),
	}
}

// Close releases the bucket.
func (r *Repository) Close() error {
	return r.bucket.Close()
}

// Load returns the stored snapshot merged over the defaults, or the
// defaults when nothing usable is stored.
func (r *Repository) Load(ctx context.Context) models.AppData {
	raw, err := r.bucket.ReadAll(ctx, r.key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			r.log.Info().Str("key", r.key).Msg("No snapshot stored, starting from defaults")
		} else {
			r.log.Warn().Err(err).Str("key", r.key).Msg("Failed to read snapshot, starting from defaults")
		}
		return DefaultData()
	}

	data, err := Decode(raw)
	if err != nil {
		r.log.Warn().Err(err).Str("key", r.key).Msg("Stored snapshot unreadable, starting from defaults")
		return DefaultData()
	}

	r.log.Debug().
		Int("bytes", len(raw)).
		Int("invoices", len(data.Invoices)).
		Msg("Snapshot loaded")
	return data
}

// Save replaces the stored snapshot with data.
func (r *Repository) Save(ctx context.Context, data models.AppData) error {
	const op = "Save"

	raw, err := json.Marshal(data)
	if err != nil {
		return WrapStorageError(op, r.key, err, "failed to encode snapshot")
	}

	opts := &blob.WriterOptions{ContentType: "application/json"}
	if err := r.bucket.WriteAll(ctx, r.key, raw, opts); err != nil {
		return WrapStorageError(op, r.key, fmt.Errorf("%w: %v", ErrStoreUnavailable, err), "")
	}

	r.log.Debug().Int("bytes", len(raw)).Msg("Snapshot saved")
	return nil
}
