package models

import (
	"os"
	"path/filepath"
)

// InitializeTestDb points the package at a fresh, migrated & seeded db in a
// temp dir. It panics on failure since no test can run without it.
func InitializeTestDb() {
	dir, err := os.MkdirTemp("", "zantag-test-*")
	if err != nil {
		panic(err)
	}

	err = AutoMigrate("test-pass-phrase", filepath.Clean(dir))
	if err != nil {
		panic(err)
	}
}
