package history

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Refresh is one recorded status refresh, successful or not.
type Refresh struct {
	ID          int64
	At          time.Time
	APIOK       bool
	QueueOK     bool
	RAGOK       bool
	Unreachable bool
	Queued      int
	Failed      int
	Catalog     int
	SupportDocs int
}

// Ingestion is one recorded ingestion submission.
type Ingestion struct {
	ID         string // uuid assigned client-side
	At         time.Time
	Type       string // "catalog" or "document"
	Status     string // "ok" or "failed"
	Collection string
	Chunks     int
	Error      string
}
