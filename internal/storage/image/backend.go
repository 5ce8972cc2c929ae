// Package image 处理菜谱图和头像：URL 原样保留，data URI 上传到对象存储。
package image

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"recipe-share-api/internal/core/config"
)

var ErrDisabled = errors.New("image: storage backend is disabled")

// Backend 对象存储
type Backend interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
	Delete(ctx context.Context, key string) error
	// KeyOf 只认本存储发出去的 url
	KeyOf(url string) (key string, ok bool)
}

// NewBackend 按 storage.driver 选择实现
func NewBackend(ctx context.Context, c config.Storage, log *zap.Logger) (Backend, error) {
	switch c.Driver {
	case "minio":
		return NewMinio(ctx, c)
	case "s3":
		return NewS3(ctx, c)
	case "", "none":
		log.Warn("image storage disabled; only plain image urls are accepted")
		return Disabled{}, nil
	}
	return nil, fmt.Errorf("image: unknown driver %q", c.Driver)
}

type Disabled struct{}

func (Disabled) Put(context.Context, string, []byte, string) (string, error) { return "", ErrDisabled }
func (Disabled) Delete(context.Context, string) error                        { return nil }
func (Disabled) KeyOf(string) (string, bool)                                 { return "", false }

// publicBase 统一处理 "<base>/<key>" 形式的公开地址
type publicBase string

func (b publicBase) url(key string) string {
	return strings.TrimRight(string(b), "/") + "/" + key
}

func (b publicBase) keyOf(url string) (string, bool) {
	prefix := strings.TrimRight(string(b), "/") + "/"
	if prefix == "/" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}
