package storage

import (
	"fmt"
	"path/filepath"
)

type Backend string

const (
	BackendSQLite     Backend = "sqlite"
	BackendSQLitePure Backend = "sqlite-pure"
	BackendFile       Backend = "file"
	BackendMemory     Backend = "memory"
)

func (b Backend) IsValid() bool {
	switch b {
	case BackendSQLite, BackendSQLitePure, BackendFile, BackendMemory:
		return true
	default:
		return false
	}
}

// Open builds the KV for backend. dbPath defaults to dataDir/protodo.db for
// the sqlite backends.
func Open(backend Backend, dataDir, dbPath string) (KV, error) {
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "protodo.db")
	}
	switch backend {
	case BackendSQLite:
		return OpenSQLite(dbPath, DriverCGO)
	case BackendSQLitePure:
		return OpenSQLite(dbPath, DriverPure)
	case BackendFile:
		return NewFileKV(dataDir)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", backend)
	}
}
