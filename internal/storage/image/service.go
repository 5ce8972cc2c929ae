package image

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipe-share-api/internal/domain"
)

// 上传目录
const (
	FolderRecipes  = "recipes"
	FolderProfiles = "profiles"
)

var allowedTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

type Service struct {
	backend  Backend
	maxBytes int
	log      *zap.Logger
}

func NewService(b Backend, maxMB int, log *zap.Logger) *Service {
	if maxMB <= 0 {
		maxMB = 8
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{backend: b, maxBytes: maxMB << 20, log: log}
}

func IsDataURI(s string) bool { return strings.HasPrefix(strings.TrimSpace(s), "data:") }

// Resolve 返回可以直接存库的图片地址。data URI 会被解码、校验并上传；
// 其它字符串视为已有 url 原样返回。
func (s *Service) Resolve(ctx context.Context, raw, folder string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !IsDataURI(raw) {
		return raw, nil
	}
	data, err := s.decode(raw)
	if err != nil {
		return "", err
	}
	mt := mimetype.Detect(data)
	if _, ok := allowedTypes[mt.String()]; !ok {
		return "", domain.Validation("unsupported image type: " + mt.String())
	}

	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), mt.Extension())
	url, err := s.backend.Put(ctx, key, data, mt.String())
	if errors.Is(err, ErrDisabled) {
		return "", domain.Validation("image upload is not available; provide an image url")
	}
	if err != nil {
		return "", domain.Internal("image upload failed", err)
	}
	s.log.Debug("image uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return url, nil
}

// decode 只接受 data:image/<type>;base64,<payload>
func (s *Service) decode(raw string) ([]byte, error) {
	head, payload, ok := strings.Cut(raw, ",")
	if !ok || !strings.HasPrefix(head, "data:image/") || !strings.HasSuffix(head, ";base64") {
		return nil, domain.Validation("image must be a url or a base64 data:image uri")
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > s.maxBytes+3 {
		return nil, domain.Validation(fmt.Sprintf("image exceeds %d MB", s.maxBytes>>20))
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, domain.Validation("invalid base64 image payload")
	}
	if len(data) == 0 {
		return nil, domain.Validation("empty image payload")
	}
	if len(data) > s.maxBytes {
		return nil, domain.Validation(fmt.Sprintf("image exceeds %d MB", s.maxBytes>>20))
	}
	return data, nil
}

// Release 尽力删除本存储上的图片；外部 url 与失败都只记日志
func (s *Service) Release(ctx context.Context, url string) {
	key, ok := s.backend.KeyOf(url)
	if !ok {
		return
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		s.log.Warn("image release failed", zap.String("key", key), zap.Error(err))
	}
}

// Owns 该 url 是否由本存储托管
func (s *Service) Owns(url string) bool {
	_, ok := s.backend.KeyOf(url)
	return ok
}
