package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram-app/backend/config"
)

// ImageService stores recipe images in S3. Clients submit images as base64
// payloads (optionally a data URI); the stored value is a public URL.
type ImageService struct {
	s3Config *config.S3Config
}

func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

var extensionByContentType = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeBase64Image decodes a base64 image payload. A data URI prefix
// ("data:image/png;base64,...") determines the content type; a bare payload
// defaults to PNG.
func DecodeBase64Image(payload string) ([]byte, string, error) {
	contentType := "image/png"
	if strings.HasPrefix(payload, "data:") {
		semi := strings.Index(payload, ";base64,")
		if semi < 0 {
			return nil, "", fmt.Errorf("malformed data URI")
		}
		contentType = payload[len("data:"):semi]
		payload = payload[semi+len(";base64,"):]
	}
	if _, ok := extensionByContentType[contentType]; !ok {
		return nil, "", fmt.Errorf("unsupported image content type %q", contentType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return data, contentType, nil
}

// UploadRecipeImage uploads image bytes to S3 under a fresh key and returns
// the public URL.
func (s *ImageService) UploadRecipeImage(ctx context.Context, data []byte, contentType string) (string, error) {
	fileName := fmt.Sprintf("recipes/images/%s.%s", uuid.New().String(), extensionByContentType[contentType])

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName)
	log.Printf("[ImageService] uploaded recipe image to %s", publicURL)
	return publicURL, nil
}
