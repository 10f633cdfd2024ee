package contracts

import "errors"

// ⭐ SSOT: 도메인 공통 에러는 여기서만 정의

var (
	// ErrNotFound is returned by repositories when no stored row matches
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks caller errors (bad ticker, unknown period)
	ErrInvalidInput = errors.New("invalid input")
)
