package importer

// DedupFallbackPolicy decides row status when the existence query fails.
type DedupFallbackPolicy string

const (
	// FallbackAssumeNew tags every row new and lets the upload proceed.
	FallbackAssumeNew DedupFallbackPolicy = "assume_new"
	// FallbackMarkError tags every row error so nothing is uploaded.
	FallbackMarkError DedupFallbackPolicy = "mark_error"
)

// ParseFallbackPolicy returns the named policy, or FallbackAssumeNew for anything unknown.
func ParseFallbackPolicy(s string) DedupFallbackPolicy {
	if DedupFallbackPolicy(s) == FallbackMarkError {
		return FallbackMarkError
	}
	return FallbackAssumeNew
}

// BatchDedupPolicy decides which row survives when a batch repeats a key.
type BatchDedupPolicy string

const (
	BatchDedupLastWins  BatchDedupPolicy = "last_wins"
	BatchDedupFirstWins BatchDedupPolicy = "first_wins"
)
