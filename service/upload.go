// Package service holds the domain services sitting between the
// handlers and the database.
package service

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"
	"vidtube/api/cloudflare"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const keyCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// UploadResult is what the media host hands back after a successful
// upload.
type UploadResult struct {
	URL string
	Key string
}

// MediaUploader pushes a local file to the media host. Handlers treat
// a failure here as a validation failure of the request that carried
// the file, never as a crash.
type MediaUploader interface {
	Do(localPath string) (*UploadResult, error)
}

// Uploader is the R2-backed MediaUploader.
type Uploader struct {
	R2 *cloudflare.R2Client
}

func NewUploader(r2 *cloudflare.R2Client) *Uploader {
	return &Uploader{R2: r2}
}

// Do uploads the file at p and returns its public URL. The local file
// is removed afterwards whether the upload worked or not.
func (u *Uploader) Do(p string) (*UploadResult, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload file, %w", err)
	}
	defer os.Remove(p)
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat upload file, %w", err)
	}

	ext := filepath.Ext(p)

	id, err := gonanoid.Generate(keyCharset, 16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate object key, %w", err)
	}
	key := id + ext

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	_, err = u.R2.C.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        u.R2.Bucket,
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to media host, %w", err)
	}

	zap.L().Debug("Uploaded media object", zap.String("key", key), zap.Int64("size", stat.Size()))

	return &UploadResult{
		URL: u.R2.URL(key),
		Key: key,
	}, nil
}
