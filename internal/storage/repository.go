package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Keys the task manager persists under.
const (
	KeyTasks    = "pro_todo_tasks"
	KeySettings = "pro_todo_settings"
)

// KV is a key-value store of JSON blobs. Get returns ErrNotFound for a key
// that was never written.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
