package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/sudheeshpoolakkal/vespera-sub001/config"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/gateway"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/infrastructure/breaker"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

func NewMinioClient(cfg config.StorageConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	logrus.Info("Successfully connected to MinIO")

	return client, nil
}

type minioStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
	log       *logrus.Logger
	breaker   *gobreaker.CircuitBreaker[string]
}

// NewMinioStorage stores media in one bucket and serves it from publicURL.
func NewMinioStorage(client *minio.Client, cfg config.StorageConfig, log *logrus.Logger) gateway.MediaStorage {
	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &minioStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		log:       log,
		breaker:   breaker.New[string]("minio", log),
	}
}

func (s *minioStorage) Upload(ctx context.Context, file *gateway.Upload, folder string) (string, error) {
	objectName := path.Join(folder, uuid.NewString()+path.Ext(file.FileName))

	return s.breaker.Execute(func() (string, error) {
		_, err := s.client.PutObject(ctx, s.bucket, objectName, file.Reader, file.Size, minio.PutObjectOptions{
			ContentType: file.ContentType,
		})
		if err != nil {
			return "", fmt.Errorf("put object %s: %w", objectName, err)
		}
		return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, objectName), nil
	})
}

func (s *minioStorage) Delete(ctx context.Context, url string) error {
	prefix := fmt.Sprintf("%s/%s/", s.publicURL, s.bucket)
	if !strings.HasPrefix(url, prefix) {
		return fmt.Errorf("url %s is not served by bucket %s", url, s.bucket)
	}
	objectName := strings.TrimPrefix(url, prefix)

	_, err := s.breaker.Execute(func() (string, error) {
		return "", s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	})
	return err
}
