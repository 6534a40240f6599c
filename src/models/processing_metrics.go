package models

// MProcessingMetrics describes one tracking run.
type MProcessingMetrics struct {
	AggregationTimeSeconds float64 `json:"aggregation_time_seconds"`
	ListingsFetched        int     `json:"listings_fetched"`
	ListingsDropped        int     `json:"listings_dropped"`
	SnapshotsWritten       int     `json:"snapshots_written"`
	SnapshotsRejected      int     `json:"snapshots_rejected"`
	PartitionsSkipped      int     `json:"partitions_skipped"`
}
