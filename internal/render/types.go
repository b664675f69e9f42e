package render

// Status is the torrent state index reported by Transmission.
type Status int

func (s Status) String() string { return StatusLabel(int(s)) }

// TorrentSummary is one row of the torrents list.
// ETA is in seconds and may be negative when unknown; rates are bytes/sec.
type TorrentSummary struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Status       Status  `json:"status"`
	PercentDone  float64 `json:"percentDone"`
	ETA          int64   `json:"eta"`
	RateDownload int64   `json:"rateDownload"`
	RateUpload   int64   `json:"rateUpload"`
}

// TorrentDetail is a single torrent with size, dates and location.
// AddedDate and DoneDate are unix seconds; 0 means "now" when rendered.
type TorrentDetail struct {
	TorrentSummary

	SizeWhenDone   int64  `json:"sizeWhenDone"`
	AddedDate      int64  `json:"addedDate"`
	DoneDate       int64  `json:"doneDate"`
	DownloadDir    string `json:"downloadDir"`
	PeersConnected int    `json:"peersConnected"`
}

// NewTorrent identifies a torrent that was just added.
type NewTorrent struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SessionInfo mirrors the session-get fields shown in session details.
// Speed limits are in kB/s, free space in bytes.
type SessionInfo struct {
	Version              string `json:"version"`
	ConfigDir            string `json:"config-dir"`
	DownloadDirFreeSpace int64  `json:"download-dir-free-space"`
	DownloadDir          string `json:"download-dir"`

	IncompleteDirEnabled bool   `json:"incomplete-dir-enabled"`
	IncompleteDir        string `json:"incomplete-dir"`

	SpeedLimitDownEnabled bool  `json:"speed-limit-down-enabled"`
	SpeedLimitDown        int64 `json:"speed-limit-down"`
	SpeedLimitUpEnabled   bool  `json:"speed-limit-up-enabled"`
	SpeedLimitUp          int64 `json:"speed-limit-up"`

	PeerLimitGlobal     int `json:"peer-limit-global"`
	PeerLimitPerTorrent int `json:"peer-limit-per-torrent"`

	DownloadQueueEnabled bool `json:"download-queue-enabled"`
}
