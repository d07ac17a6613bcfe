// Package storage defines the pluggable storage contract (spec.md §4.C):
// one Store interface satisfied by two backends, storage/embedded and
// storage/remote, selected at process start by config.Config.Storage.Backend
// (grounded on gateway/interfaces.go's IGatewayAdapter — one interface,
// exactly one live implementation per process).
package storage

import "time"

// SpanFilter is the conjunctive filter from spec.md §4.D: every populated
// field narrows the match; a nil/zero field is a wildcard.
type SpanFilter struct {
	TraceID      *string
	Status       *string // running | completed | failed
	Kind         *string // fs_read | fs_write | llm_call | custom
	Model        *string // only applied when Kind == llm_call
	Provider     *string
	NameContains *string // case-sensitive substring
	Path         *string // prefix match on fs_read/fs_write paths
	Since        *time.Time
	Until        *time.Time
}

// TraceFilter narrows list_traces; currently just a name-substring filter,
// extendable without breaking the Store contract.
type TraceFilter struct {
	NameContains *string
}
