package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

const (
	// thumbWidth is the width of the generated thumbnail variant
	thumbWidth = 400
	// maxImageBytes caps a single downloaded image
	maxImageBytes = 10 << 20
)

// ProductImageMirror downloads upstream product images, stores the original
// plus a thumbnail, and returns the owned URLs
type ProductImageMirror struct {
	images     ImageRepository
	httpClient *http.Client
}

// NewProductImageMirror creates a ProductImageMirror
func NewProductImageMirror(images ImageRepository) *ProductImageMirror {
	return &ProductImageMirror{
		images:     images,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Mirror copies the given upstream URLs into owned storage. One failed image
// does not fail the batch; its upstream URL is kept instead.
func (m *ProductImageMirror) Mirror(ctx context.Context, slug string, urls []string) ([]string, error) {
	if len(urls) == 0 {
		return urls, nil
	}

	mirrored := make([]string, 0, len(urls))
	failures := 0
	for i, src := range urls {
		url, err := m.mirrorOne(ctx, slug, i, src)
		if err != nil {
			failures++
			log.Warn().Err(err).Str("slug", slug).Str("url", src).Msg("Image mirror failed")
			mirrored = append(mirrored, src)
			continue
		}
		mirrored = append(mirrored, url)
	}

	if failures == len(urls) {
		return nil, fmt.Errorf("all %d images failed for %s", failures, slug)
	}
	return mirrored, nil
}

func (m *ProductImageMirror) mirrorOne(ctx context.Context, slug string, index int, src string) (string, error) {
	data, contentType, err := m.download(ctx, src)
	if err != nil {
		return "", err
	}

	originalPath := ObjectPath(slug, index, "original", extensionFor(contentType))
	url, err := m.images.Upload(ctx, originalPath, bytes.NewReader(data), contentType, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("upload original: %w", err)
	}

	// Thumbnail is best-effort: a broken encode still leaves a usable original
	if err := m.uploadThumbnail(ctx, slug, index, data); err != nil {
		log.Debug().Err(err).Str("slug", slug).Msg("Thumbnail generation failed")
	}

	return url, nil
}

func (m *ProductImageMirror) uploadThumbnail(ctx context.Context, slug string, index int, data []byte) error {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}

	thumbPath := ObjectPath(slug, index, "thumb", ".jpg")
	_, err = m.images.Upload(ctx, thumbPath, &buf, "image/jpeg", int64(buf.Len()))
	return err
}

func (m *ProductImageMirror) download(ctx context.Context, src string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download returned %d", resp.StatusCode)
	}

	limited := http.MaxBytesReader(nil, resp.Body, maxImageBytes)
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(limited); err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(buf.Bytes())
	}
	return buf.Bytes(), contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
