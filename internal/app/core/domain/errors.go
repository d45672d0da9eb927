package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAmount 金額格式錯誤
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrMissingAmount 存款/提款缺少金額
	ErrMissingAmount = errors.New("missing amount")

	// ErrUnknownTransactionType 未知的交易類型
	ErrUnknownTransactionType = errors.New("unknown transaction type")

	// ErrStorage 儲存層錯誤，所有 StorageError 都會符合 errors.Is(err, ErrStorage)
	ErrStorage = errors.New("storage error")

	// ErrStoreClosed 儲存層已關閉
	ErrStoreClosed = errors.New("store closed")
)

// StorageError 包裝儲存層存取失敗 (鎖、連線、SQL 錯誤等)
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError 建立 StorageError
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is 讓 errors.Is(err, ErrStorage) 成立
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
