package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/kurin/blazer/b2"

	"github.com/alainmurenzi/smart-edu-task-manager/config"
)

// b2Store Backblaze B2 存储后端
type b2Store struct {
	client *b2.Client
	bucket *b2.Bucket
}

func newB2Store(ctx context.Context, cfg *config.StorageConfig) (*b2Store, error) {
	client, err := b2.NewClient(ctx, cfg.B2AccountID, cfg.B2AppKey)
	if err != nil {
		return nil, fmt.Errorf("创建 B2 客户端失败: %w", err)
	}

	bucket, err := client.Bucket(ctx, cfg.B2Bucket)
	if err != nil {
		return nil, fmt.Errorf("获取 B2 bucket 失败: %w", err)
	}

	return &b2Store{client: client, bucket: bucket}, nil
}

func (s *b2Store) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	token := uuid.New().String() + "_" + sanitize(filename)
	w := s.bucket.Object(token).NewWriter(ctx)

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("上传对象失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("关闭上传流失败: %w", err)
	}
	return token, nil
}

func (s *b2Store) Open(ctx context.Context, token string) (io.ReadCloser, error) {
	return s.bucket.Object(token).NewReader(ctx), nil
}
