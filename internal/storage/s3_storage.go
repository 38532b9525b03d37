package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/meditrack/meditrack-backend/config"
)

// KeyPrefix is the folder every medical upload lives under.
const KeyPrefix = "meditrack_uploads"

const presignExpiry = 15 * time.Minute

// Upload kinds map to the record type the file is attached to.
const (
	KindPrescription = "prescription"
	KindReport       = "report"
	KindSymptom      = "symptom"
)

var (
	ErrUnknownKind        = errors.New("unknown upload kind")
	ErrContentTypeBlocked = errors.New("content type is not allowed")
)

var allowedContentTypes = map[string]string{
	"image/jpeg":         ".jpg",
	"image/jpg":          ".jpg",
	"image/png":          ".png",
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	baseURL string
}

// PresignedUpload is a short-lived PUT URL and the address the object will
// be readable at once uploaded.
type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
	Key       string `json:"key"`
}

func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	var awsCfg aws.Config

	// Static keys when configured, otherwise the default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		var err error
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}, nil
}

// PresignUpload validates kind and content type and signs a PUT for a fresh
// object key.
func (s *S3Storage) PresignUpload(ctx context.Context, kind, filename, contentType string) (*PresignedUpload, error) {
	key, err := ObjectKey(kind, filename, contentType)
	if err != nil {
		return nil, err
	}

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedUpload{
		UploadURL: req.URL,
		FileURL:   s.fileURL(key),
		Key:       key,
	}, nil
}

func (s *S3Storage) fileURL(key string) string {
	if s.baseURL != "" {
		// CloudFront or custom domain
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}

// ObjectKey builds meditrack_uploads/<kind>/<uuid><ext>. The extension comes
// from the filename when it agrees with the content type.
func ObjectKey(kind, filename, contentType string) (string, error) {
	switch kind {
	case KindPrescription, KindReport, KindSymptom:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	ext, ok := allowedContentTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrContentTypeBlocked, contentType)
	}
	if fileExt := strings.ToLower(filepath.Ext(filename)); fileExt == ext || (ext == ".jpg" && fileExt == ".jpeg") {
		ext = fileExt
	}

	return fmt.Sprintf("%s/%s/%s%s", KeyPrefix, kind, uuid.NewString(), ext), nil
}
