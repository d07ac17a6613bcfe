package models

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is a named collection of labeled examples (spec.md §3).
type Dataset struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	TenantKey   string    `json:"-"`
}

// DatapointKind is the discriminant for Datapoint's tagged-variant cases.
type DatapointKind string

const (
	DatapointLLMConversation DatapointKind = "llm_conversation"
	DatapointGeneric         DatapointKind = "generic"
)

// DatapointSource records how a Datapoint entered its dataset (spec.md §3).
type DatapointSource string

const (
	SourceManual     DatapointSource = "manual"
	SourceSpanExport DatapointSource = "span_export"
	SourceFileUpload DatapointSource = "file_upload"
)

// ConversationMessage is one turn of an llm_conversation datapoint.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Datapoint is an element of a Dataset (spec.md §3).
type Datapoint struct {
	ID        uuid.UUID       `json:"id"`
	DatasetID uuid.UUID       `json:"datasetId"`
	Kind      DatapointKind   `json:"kind"`
	Source    DatapointSource `json:"source"`
	SpanID    *uuid.UUID      `json:"spanId,omitempty"`

	// llm_conversation
	Messages         []ConversationMessage `json:"messages,omitempty"`
	ExpectedMessage  *ConversationMessage  `json:"expectedMessage,omitempty"`

	// generic
	Input          any      `json:"input,omitempty"`
	ExpectedOutput any      `json:"expectedOutput,omitempty"`
	ActualOutput   any      `json:"actualOutput,omitempty"`
	Score          *float64 `json:"score,omitempty"`

	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	TenantKey string         `json:"-"`
}

// QueueState is the one-way state machine for QueueItem (spec.md §3).
type QueueState string

const (
	QueuePending   QueueState = "pending"
	QueueClaimed   QueueState = "claimed"
	QueueCompleted QueueState = "completed"
)

// QueueItem is a review task enqueued against a datapoint (spec.md §3).
type QueueItem struct {
	ID           uuid.UUID      `json:"id"`
	DatasetID    uuid.UUID      `json:"datasetId"`
	DatapointID  uuid.UUID      `json:"datapointId"`
	State        QueueState     `json:"state"`
	Claimer      *string        `json:"claimer,omitempty"`
	ClaimedAt    *time.Time     `json:"claimedAt,omitempty"`
	OriginalData map[string]any `json:"originalData"`
	EditedData   map[string]any `json:"editedData,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	TenantKey    string         `json:"-"`
}
