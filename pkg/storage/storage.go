package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/alainmurenzi/smart-edu-task-manager/config"
)

// FileStore 附件存储的不透明句柄
// Save 返回的 token 仅由本接口解释，业务层只负责保存与透传
type FileStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (token string, err error)
	Open(ctx context.Context, token string) (io.ReadCloser, error)
}

// New 根据配置选择存储后端
func New(ctx context.Context, cfg *config.StorageConfig) (FileStore, error) {
	switch cfg.Backend {
	case "b2":
		return newB2Store(ctx, cfg)
	default:
		return newLocalStore(cfg.LocalDir)
	}
}

// ── 本地磁盘实现 ──

type localStore struct {
	dir string
}

func newLocalStore(dir string) (*localStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}
	return &localStore{dir: dir}, nil
}

func (s *localStore) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	token := uuid.New().String() + "_" + sanitize(filename)
	f, err := os.Create(filepath.Join(s.dir, token))
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	return token, nil
}

func (s *localStore) Open(_ context.Context, token string) (io.ReadCloser, error) {
	// token 由 Save 生成，不允许路径穿越
	if strings.ContainsAny(token, "/\\") {
		return nil, fmt.Errorf("非法文件 token: %q", token)
	}
	return os.Open(filepath.Join(s.dir, token))
}

// sanitize 压缩文件名中的路径与空白字符
func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '/', '\\':
			return '_'
		}
		return r
	}, name)
}
