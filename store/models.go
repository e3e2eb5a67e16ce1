package store

import (
	"time"

	"gorm.io/gorm"
)

// HiddenWindow records a window the operator hid, so it can be listed and
// restored even after the controller restarts. Handles are recycled by the
// OS, so Title/ProcessName/PID are kept to let the operator recognise a
// stale row.
type HiddenWindow struct {
	gorm.Model
	Handle      uint64 `gorm:"uniqueIndex;not null"`
	Title       string
	ProcessName string
	PID         uint32
	HiddenAt    time.Time
}

// Setting is a single persisted key/value preference.
type Setting struct {
	gorm.Model
	Key   string `gorm:"uniqueIndex;not null"`
	Value string
}

// OperationRecord is one entry of the mutation history: every exclude,
// include, unload, topmost, hide or show attempt and how it ended.
type OperationRecord struct {
	gorm.Model
	Handle      uint64
	Title       string
	ProcessName string
	Operation   string // "exclude", "include", "unload", "topmost", "hide", "show"
	Success     bool
	Detail      string
	CreatedAt   time.Time
}
