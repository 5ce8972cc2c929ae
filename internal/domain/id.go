package domain

import (
	"strings"

	"github.com/google/uuid"
)

// ParseID 校验并返回规范形式（小写、带连字符）的 id
func ParseID(raw, what string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", InvalidID("invalid " + what + " id")
	}
	return id.String(), nil
}

// CanonicalID 无法解析时原样返回（用于比较，不做校验）
func CanonicalID(raw string) string {
	if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
		return id.String()
	}
	return raw
}
