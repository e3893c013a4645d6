package blob

import (
	"context"
	"fmt"
	"os"

	fsstore "plantcore/internal/infra/blob/fs"
	memorystore "plantcore/internal/infra/blob/memory"
	s3store "plantcore/internal/infra/blob/s3"
)

// NewMemory returns an in-memory blob store suitable for tests.
func NewMemory() Store { return memorystore.New() }

// NewFilesystem returns a filesystem blob store rooted at path.
func NewFilesystem(root string) (Store, error) { return fsstore.New(root) }

// S3Config re-exports the S3 driver configuration.
type S3Config = s3store.Config

// NewS3 constructs an S3-backed blob store from the provided configuration.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) { return s3store.New(ctx, cfg) }

// NewMockS3ForTests exposes the in-memory S3 mock for cross-package tests.
func NewMockS3ForTests() Store { return s3store.NewMockForTests() }

// Open selects a blob store implementation using environment variables.
//
//	PLANTCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	PLANTCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	(S3 variables documented in the s3 driver)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("PLANTCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("PLANTCORE_BLOB_FS_ROOT"))
	case DriverS3:
		return s3store.OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
