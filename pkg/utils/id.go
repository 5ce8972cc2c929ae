package utils

import "github.com/google/uuid"

// NewID 随机 v4 uuid（小写带连字符）
func NewID() string { return uuid.NewString() }
