package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kitchenbook/backend/config"
)

// ImageService stores base64 data-URI recipe images and hands back a stable
// URL. With an S3 bucket configured the object goes there; otherwise it is
// written under the local media directory.
type ImageService struct {
	s3Config *config.S3Config
	mediaDir string
	mediaURL string
	logger   *zap.Logger
}

func NewImageService(cfg *config.Config, s3Config *config.S3Config, logger *zap.Logger) *ImageService {
	return &ImageService{
		s3Config: s3Config,
		mediaDir: cfg.MediaDir,
		mediaURL: strings.TrimRight(cfg.MediaURL, "/"),
		logger:   logger,
	}
}

// StoreDataURI decodes a "data:image/<ext>;base64,<payload>" string and
// stores the bytes. Values that are not data URIs (an existing URL on
// update, or empty) pass through unchanged.
func (s *ImageService) StoreDataURI(ctx context.Context, dataURI string) (string, error) {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return dataURI, nil
	}

	meta, payload, found := strings.Cut(dataURI, ";base64,")
	if !found {
		return "", fmt.Errorf("image is not base64-encoded")
	}
	ext := strings.TrimPrefix(meta, "data:image/")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	key := fmt.Sprintf("recipes/%s.%s", uuid.New(), ext)

	if s.s3Config != nil {
		_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.s3Config.BucketName),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String("image/" + ext),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload image to S3: %w", err)
		}
		url := s.s3Config.ObjectURL(key)
		s.logger.Info("stored recipe image", zap.String("url", url))
		return url, nil
	}

	path := filepath.Join(s.mediaDir, key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.mediaURL + "/" + key, nil
}
