package objectstore

import (
	"context"
	"time"

	"github.com/seedbotics/fieldgate/internal/apperr"
)

// Cloud is the managed blob storage Store. Until a bucket is provisioned every
// operation fails with a configuration error.
type Cloud struct {
	bucket string
}

var _ Store = (*Cloud)(nil)

// NewCloud builds a cloud store against the given bucket.
func NewCloud(bucket string) *Cloud {
	return &Cloud{bucket: bucket}
}

func (c *Cloud) notConfigured() error {
	if c.bucket == "" {
		return apperr.Configuration("object store bucket not configured")
	}
	return apperr.Configuration("cloud object store not implemented for bucket " + c.bucket)
}

func (c *Cloud) Upload(context.Context, string, []byte, string) (ObjectInfo, error) {
	return ObjectInfo{}, c.notConfigured()
}

func (c *Cloud) Download(context.Context, string) ([]byte, error) {
	return nil, c.notConfigured()
}

func (c *Cloud) Delete(context.Context, string) error { return c.notConfigured() }

func (c *Cloud) Exists(context.Context, string) (bool, error) {
	return false, c.notConfigured()
}

func (c *Cloud) List(context.Context, string) ([]ObjectInfo, error) {
	return nil, c.notConfigured()
}

func (c *Cloud) Metadata(context.Context, string) (ObjectInfo, error) {
	return ObjectInfo{}, c.notConfigured()
}

func (c *Cloud) SignedURL(context.Context, string, time.Duration) (string, error) {
	return "", c.notConfigured()
}
