package domain

import "time"

// StorageStatus is the result of a capacity check.
type StorageStatus struct {
	LimitReached bool    `json:"limitReached"`
	CurrentSize  int64   `json:"currentSize"`
	MaxSize      int64   `json:"maxSize"`
	UsagePercent float64 `json:"usagePercent"`
}

type Status struct {
	PostingEnabled      bool          `json:"postingEnabled"`
	NextChangeTimestamp time.Time     `json:"nextChangeTimestamp"`
	CurrentTimestamp    time.Time     `json:"currentTimestamp"`
	Timezone            string        `json:"timezone"`
	Storage             StorageStatus `json:"storage"`
}
