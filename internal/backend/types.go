package backend

import "time"

// HealthSnapshot is the response of GET /health. It is replaced wholesale on
// every successful refresh; a failed refresh leaves the previous value intact.
type HealthSnapshot struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Env     string `json:"env"`
}

// QueueStats describes the message queue. When Error is non-empty the counts
// come from an unreachable queue backend and must be treated as unknown, not
// zero.
type QueueStats struct {
	Queued   int    `json:"queued"`
	Started  int    `json:"started"`
	Finished int    `json:"finished"`
	Failed   int    `json:"failed"`
	Deferred int    `json:"deferred"`
	Error    string `json:"error,omitempty"`
}

// RAGStats describes the knowledge index collections. Same Error contract as
// QueueStats.
type RAGStats struct {
	Catalog     int    `json:"catalog"`
	SupportDocs int    `json:"support_docs"`
	Error       string `json:"error,omitempty"`
}

// BotConfig is the configuration block the backend reports in its stats.
type BotConfig struct {
	WhatsAppProvider string `json:"whatsapp_provider"`
	LLMModel         string `json:"llm_model"`
	Env              string `json:"env"`
}

// StatsSnapshot is the response of GET /admin/stats.
type StatsSnapshot struct {
	Queue  QueueStats `json:"queue"`
	RAG    RAGStats   `json:"rag"`
	Config BotConfig  `json:"config"`
}

// SystemStatus is derived client-side from a (health, stats) pair. Each
// boolean is computed independently; one subsystem failing never masks
// another.
type SystemStatus struct {
	APIOK   bool
	QueueOK bool
	RAGOK   bool
}

// Message is a single turn in a conversation.
type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a WhatsApp thread as the backend stores it.
type Conversation struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	ContactName string    `json:"contact_name,omitempty"`
	Messages    []Message `json:"messages"`
	Status      string    `json:"status"` // "active", "closed", "pending"
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Lead stages form a closed, workflow-ordered set.
const (
	StageNew       = "new"
	StageContacted = "contacted"
	StageQualified = "qualified"
	StageConverted = "converted"
	StageLost      = "lost"
)

// Lead is a sales lead captured by the agents.
type Lead struct {
	ID          string    `json:"id"`
	Phone       string    `json:"phone"`
	ContactName string    `json:"contact_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Interest    string    `json:"interest,omitempty"`
	Stage       string    `json:"stage"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Notes       string    `json:"notes,omitempty"`
}

// IngestResult is the backend's acknowledgement of a completed ingestion. The
// server-side effect is already durable when this is returned; the client
// keeps no retry state for it.
type IngestResult struct {
	Status        string `json:"status"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Collection    string `json:"collection"`
}

// JobStatus is the response of GET /admin/jobs/{id}.
type JobStatus struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	Result     string `json:"result,omitempty"`
	EnqueuedAt string `json:"enqueued_at,omitempty"`
	StartedAt  string `json:"started_at,omitempty"`
}
