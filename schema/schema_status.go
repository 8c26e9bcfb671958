package schema

import "time"

// StoreStatus represents the status of the flow store.
type StoreStatus struct {
	Backend          string           `json:"backend"`
	Connected        bool             `json:"connected"`
	SchemaVersion    uint             `json:"schema_version"`
	TotalPeriods     int64            `json:"total_periods"`
	LastPeriodTime   time.Time        `json:"last_period_time"`
	LastActivityTime time.Time        `json:"last_activity_time"`
	TableSizes       map[string]int64 `json:"table_sizes"`
}
