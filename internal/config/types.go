package config

// Config is the on-disk configuration (JSON or YAML).
//
// Example:
//
//	logging:
//	  level: info
//	  console: true
//	render:
//	  timezone: Europe/Berlin
//	  byte_units: iec
//	storage:
//	  driver: file
//	  path: ./data
type Config struct {
	Logging LoggingConfig `json:"logging"`
	Render  RenderConfig  `json:"render"`
	Storage StorageConfig `json:"storage"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty"`
}

// RenderConfig controls message formatting.
//
// Templates maps a message kind (e.g. "torrent_details") to a template
// source that replaces the built-in one. Unknown kinds are rejected.
type RenderConfig struct {
	// Timezone is an IANA name; empty means the host's local zone.
	Timezone string `json:"timezone,omitempty"`
	// ByteUnits is "iec" (1024, default) or "si" (1000).
	ByteUnits  string `json:"byte_units,omitempty"`
	EscapeHTML bool   `json:"escape_html,omitempty"`

	// PageSize is the torrents per page for paged lists; 0 disables paging.
	PageSize        int `json:"page_size,omitempty"`
	MaxNameRunes    int `json:"max_name_runes,omitempty"`
	MaxMessageRunes int `json:"max_message_runes,omitempty"`

	Templates map[string]string `json:"templates,omitempty"`
}

// StorageConfig controls the preferences store.
//
// Example:
//
//	"storage": { "driver": "redis", "url": "redis://localhost:6379/0" }
type StorageConfig struct {
	Driver     string `json:"driver"`
	Path       string `json:"path,omitempty"`
	URL        string `json:"url,omitempty"` // may carry credentials (do not log)
	Key        string `json:"key,omitempty"`
	Database   string `json:"database,omitempty"`
	Collection string `json:"collection,omitempty"`
	// Go duration strings.
	Timeout     string `json:"timeout,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}
