package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	sc "github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/validation"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// uploadURLLifetime bounds how long a presigned upload URL is accepted.
const uploadURLLifetime = 15 * time.Minute

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

type ImageUploadRequest struct {
	ContentType string `json:"contentType" validate:"required,oneof=image/jpeg image/png image/webp image/gif"`
}

// ImageUpload tells the client where to PUT the image bytes and which URL to
// store as the recipe's imageUrl afterwards.
type ImageUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"uploadUrl"`
	ImageURL  string    `json:"imageUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ImageService issues presigned S3 (MinIO) upload URLs for recipe images.
type ImageService struct {
	config *sc.Config
	log    logging.Logger
}

func NewImageService(config *sc.Config, log logging.Logger) *ImageService {
	return &ImageService{config: config, log: log.With("module", "images")}
}

// NewImageKey returns a date-partitioned object key with the given extension.
func NewImageKey(ext string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("images/%d/%02d/%02d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

func (s *ImageService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignUpload validates req and returns a presigned PUT for a new key.
func (s *ImageService) PresignUpload(ctx context.Context, req ImageUploadRequest) (Outcome[*ImageUpload], error) {
	if res := validation.Validate(req); !res.Valid() {
		return invalid[*ImageUpload](res), nil
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return Outcome[*ImageUpload]{}, fmt.Errorf("s3 client: %w", err)
	}

	bucket := s.config.S3Bucket
	key := NewImageKey(imageExtensions[req.ContentType])

	presigned, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(req.ContentType),
	}, s3.WithPresignExpires(uploadURLLifetime))
	if err != nil {
		return Outcome[*ImageUpload]{}, fmt.Errorf("presign put: %w", err)
	}

	s.log.Debug(ctx, "image upload presigned", "key", key)

	return Outcome[*ImageUpload]{Value: &ImageUpload{
		Key:       key,
		UploadURL: presigned.URL,
		ImageURL:  strings.TrimRight(s.config.S3PublicBaseURL, "/") + "/" + key,
		ExpiresAt: time.Now().UTC().Add(uploadURLLifetime),
	}}, nil
}
