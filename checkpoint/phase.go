package checkpoint

// Phase tags why a checkpoint was written, mirroring the three points in
// the coordinator where §4.1 calls for persistence.
type Phase string

const (
	FullSyncStart       Phase = "FullSyncStart"
	FullSyncEnd         Phase = "FullSyncEnd"
	IncrementalProgress Phase = "IncrementalProgress"
)
