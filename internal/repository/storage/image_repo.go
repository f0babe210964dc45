// Package storage provides the product image mirror: upstream catalog
// images copied into an owned S3 bucket so the storefront never hotlinks
// the WooCommerce host.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
)

// ImageRepository defines the interface for image storage operations
type ImageRepository interface {
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectPath string) error
	GenerateURL(objectPath string) string
}

// ObjectPath builds the bucket key for a product image variant
func ObjectPath(slug string, index int, variant string, ext string) string {
	filename := fmt.Sprintf("%d_%s%s", index, variant, ext)
	return path.Join("products", slug, filename)
}
