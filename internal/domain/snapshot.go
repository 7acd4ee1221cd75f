package domain

// Snapshot is the bounded, immutable set of collections one run evaluates.
// Loaded once up front; rules read it and never mutate it.
type Snapshot struct {
	Funds       []Fund
	Performance []PerformanceObservation
	Filings     []RegulatoryFiling
}
