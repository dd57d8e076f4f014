package service

import (
	"fmt"

	"sitelog/internal/model"
)

// handler 层按这两个错误映射 404 / 400
var (
	ErrNotFound     = model.ErrNotFound
	ErrInvalidInput = model.ErrInvalidInput
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
