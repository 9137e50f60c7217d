package cache

// BoltDB bucket names
const (
	BucketDescriptors = "descriptors" // {mode} -> Snapshot (latest, with body)
	BucketHistory     = "history"     // {mode}/{seq} -> Snapshot (no body)
	BucketMeta        = "meta"        // schema_version
	BucketStats       = "stats"       // emit counters

	// Meta keys
	KeySchemaVersion = "schema_version"
	KeyStats         = "stats"
)

// AllBuckets returns all bucket names for initialization
func AllBuckets() []string {
	return []string{
		BucketDescriptors,
		BucketHistory,
		BucketMeta,
		BucketStats,
	}
}

// dataBuckets are wiped by Clear; meta survives.
func dataBuckets() []string {
	return []string{BucketDescriptors, BucketHistory, BucketStats}
}
