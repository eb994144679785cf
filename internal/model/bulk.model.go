package model

import "time"

type SendStatus string

const (
	SendStatusSuccess SendStatus = "success"
	SendStatusFailed  SendStatus = "failed"
)

type BulkKind string

const (
	BulkKindManual       BulkKind = "manual"
	BulkKindCSV          BulkKind = "csv"
	BulkKindPersonalized BulkKind = "personalized"
	BulkKindGroup        BulkKind = "group"
)

// BulkSendResult is the outcome of one send attempt. It is never mutated
// after the dispatcher creates it.
type BulkSendResult struct {
	Contact   *Contact   `json:"contact,omitempty"`
	Phone     string     `json:"phone"`
	Message   string     `json:"message"`
	Status    SendStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

type BulkSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

type BulkReport struct {
	RunID   string           `json:"runId,omitempty"`
	Results []BulkSendResult `json:"results"`
	Summary BulkSummary      `json:"summary"`
}

// BulkRun is a finished bulk invocation as kept in the run history.
type BulkRun struct {
	ID         string           `json:"id"`
	Kind       BulkKind         `json:"kind"`
	TemplateID string           `json:"templateId,omitempty"`
	GroupID    string           `json:"groupId,omitempty"`
	DelayMs    int64            `json:"delayMs"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Results    []BulkSendResult `json:"results"`
	Summary    BulkSummary      `json:"summary"`
}

// Recipient is one bulk target before personalization. Contact is nil when the
// target came from a bare phone number.
type Recipient struct {
	Phone   string
	Contact *Contact
}
