package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/propflow/propertyflow/internal/config"
)

// MaxUploadSize 单个上传文件大小上限
const MaxUploadSize = 10 << 20 // 10 MB

// allowedExtensions 允许上传的文件扩展名
var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

// BlobStore 文档与勘验照片的对象存储接口
// 返回的定位符写入 documents/validation_photos 表,字节不入库
type BlobStore interface {
	Put(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error)
	PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// Storage MinIO 对象存储实现
type Storage struct {
	client *minio.Client
	bucket string
	region string
}

// New 根据配置创建 MinIO 客户端
func New(cfg config.StorageConfig) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Storage{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

// EnsureBucket 确保桶存在
func (s *Storage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// Put 上传对象,返回对象定位符
// 对象名加 uuid 前缀避免同名覆盖
func (s *Storage) Put(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	if err := ValidateUpload(name, size); err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("%s-%s", uuid.New().String(), filepath.Base(name))
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, opts); err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	return fmt.Sprintf("/%s/%s", s.bucket, objectKey), nil
}

// PresignGet 返回对象的带签名下载 URL
func (s *Storage) PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	key := strings.TrimPrefix(objectKey, "/"+s.bucket+"/")
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}

// ValidateUpload 校验上传文件的大小和类型
func ValidateUpload(name string, size int64) error {
	if size > MaxUploadSize {
		return fmt.Errorf("file %q exceeds the %d byte upload limit", name, int64(MaxUploadSize))
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return fmt.Errorf("file type %q is not allowed", ext)
	}
	return nil
}
