package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/Krimson/sportscan/pkg/models"
)

// MinioOptions - параметры подключения к MinIO / S3
type MinioOptions struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

// MinioStore хранит файлы в бакете MinIO / S3
type MinioStore struct {
	client *minio.Client
	bucket string
	namer  pathNamer
	logger *zap.Logger
}

// NewMinioStore подключается к MinIO и создает бакет, если его нет
func NewMinioStore(ctx context.Context, opts MinioOptions, urlPrefix string, logger *zap.Logger) (*MinioStore, error) {
	if opts.Endpoint == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" || opts.Bucket == "" {
		return nil, errors.New("minio endpoint, access key, secret key and bucket must be set")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", opts.Bucket, err)
		}
		logger.Info("minio bucket created", zap.String("bucket", opts.Bucket))
	}

	return &MinioStore{
		client: client,
		bucket: opts.Bucket,
		namer:  newPathNamer(urlPrefix),
		logger: logger,
	}, nil
}

func (s *MinioStore) Save(ctx context.Context, upload *Upload) (string, error) {
	name := objectName(upload)

	info, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(upload.Data), upload.Size(), minio.PutObjectOptions{
		ContentType: upload.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to upload %s: %v", models.ErrStorageUnavailable, name, err)
	}

	s.logger.Debug("media uploaded",
		zap.String("bucket", s.bucket),
		zap.String("name", name),
		zap.String("etag", info.ETag),
	)
	return s.namer.path(name), nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func (s *MinioStore) Exists(ctx context.Context, mediaPath string) (bool, error) {
	name, err := s.namer.name(mediaPath)
	if err != nil {
		return false, nil
	}
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to stat %s: %v", models.ErrStorageUnavailable, name, err)
	}
	return true, nil
}

func (s *MinioStore) Open(ctx context.Context, mediaPath string) (io.ReadSeekCloser, error) {
	name, err := s.namer.name(mediaPath)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get %s: %v", models.ErrStorageUnavailable, name, err)
	}
	// GetObject ленивый: ошибка отсутствия объекта приходит только при Stat/Read
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("%w: media %s", models.ErrNotFound, mediaPath)
		}
		return nil, fmt.Errorf("%w: failed to stat %s: %v", models.ErrStorageUnavailable, name, err)
	}
	return obj, nil
}

func (s *MinioStore) Delete(ctx context.Context, mediaPath string) error {
	name, err := s.namer.name(mediaPath)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %v", models.ErrStorageUnavailable, name, err)
	}
	return nil
}

func (s *MinioStore) Ping(ctx context.Context) error {
	if _, err := s.client.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
	}
	return nil
}
