package models

// Stats is the admin console summary
type Stats struct {
	Users           int       `db:"users" json:"users"`
	Posts           int       `db:"posts" json:"posts"`
	Comments        int       `db:"comments" json:"comments"`
	Likes           int       `db:"likes" json:"likes"`
	PendingRequests int       `db:"pending_requests" json:"pending_requests"`
	Host            HostStats `db:"-" json:"host"`
}

// HostStats carries machine figures. Available is false when they could not be read.
type HostStats struct {
	Available   bool    `json:"available"`
	MemoryUsed  uint64  `json:"memory_used"`
	MemoryTotal uint64  `json:"memory_total"`
	MemoryPct   float64 `json:"memory_percent"`
	DiskUsed    uint64  `json:"disk_used"`
	DiskTotal   uint64  `json:"disk_total"`
	DiskPct     float64 `json:"disk_percent"`
}
