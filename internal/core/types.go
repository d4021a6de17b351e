package core

import "time"

// ImportResult describes a committed import.
type ImportResult struct {
	ImportID string        `json:"import_id"`
	Inserted int64         `json:"inserted"`
	Duration time.Duration `json:"duration_ns"`
}

// TrashEntry is a trashed budget with the date it will be purged.
type TrashEntry struct {
	ID          string    `json:"id"`
	DeviceType  string    `json:"device_type"`
	DeviceModel string    `json:"device_model"`
	ServiceType string    `json:"service_type"`
	TotalCents  int64     `json:"total_price_cents"`
	DeletedAt   time.Time `json:"deleted_at"`
	PurgeAt     time.Time `json:"purge_at"`
}

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	MaxFileSize        int64
	MaxConcurrent      int
	MaxWaitTime        time.Duration
	ImportTimeout      time.Duration
	TrashRetentionDays int
}

const (
	DefaultMaxFileSize        = 5 << 20
	DefaultImportTimeout      = 2 * time.Minute
	DefaultTrashRetentionDays = 30
)

func (o Options) withDefaults() Options {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = DefaultMaxFileSize
	}
	if o.ImportTimeout <= 0 {
		o.ImportTimeout = DefaultImportTimeout
	}
	if o.TrashRetentionDays <= 0 {
		o.TrashRetentionDays = DefaultTrashRetentionDays
	}
	return o
}
