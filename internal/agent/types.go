package agent

import "time"

// Category is the primary classification outcome for an email.
type Category string

const (
	CategoryImportant     Category = "important"
	CategoryMarketing     Category = "marketing"
	CategoryTransactional Category = "transactional"
	CategoryPersonal      Category = "personal"
)

// Priority is the urgency label derived from the classification, distinct
// from the category itself.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Email is an inbound message as handed over by the caller. The pipeline
// never mutates it.
type Email struct {
	ID          string    `json:"id" yaml:"id"`
	SenderName  string    `json:"senderName" yaml:"sender_name"`
	SenderEmail string    `json:"senderEmail" yaml:"sender_email"`
	Subject     string    `json:"subject" yaml:"subject"`
	Body        string    `json:"body" yaml:"body"`
	ReceivedAt  time.Time `json:"receivedAt" yaml:"received_at"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Classification pairs the chosen category with a human-readable reason.
// The reason is kept for logging and debugging; it is not part of the
// response payload.
type Classification struct {
	Category Category
	Reason   string
}

// EmailSummary condenses an email body into a headline and a handful of
// key points.
type EmailSummary struct {
	Headline  string   `json:"headline"`
	KeyPoints []string `json:"keyPoints"`
}

// ActionType discriminates the closed set of action variants.
type ActionType string

const (
	ActionReply       ActionType = "reply"
	ActionUnsubscribe ActionType = "unsubscribe"
	ActionFlag        ActionType = "flag"
)

// UnsubscribeStatus reports the outcome of an unsubscribe attempt.
// StatusPending is reserved for a future asynchronous flow and is never
// produced by the current rules.
type UnsubscribeStatus string

const (
	StatusCompleted UnsubscribeStatus = "completed"
	StatusPending   UnsubscribeStatus = "pending"
	StatusNotFound  UnsubscribeStatus = "not_found"
)

// AgentAction is the tagged union of the three action shapes. Type selects
// the variant; fields that do not belong to the variant stay zero and are
// omitted from the JSON encoding.
type AgentAction struct {
	Type ActionType `json:"type"`

	// reply fields
	Subject       string   `json:"subject,omitempty"`
	Body          string   `json:"body,omitempty"`
	Tone          string   `json:"tone,omitempty"`
	FollowUpTasks []string `json:"followUpTasks,omitempty"`
	Confidence    float64  `json:"confidence,omitempty"`

	// unsubscribe fields
	Link   string            `json:"link,omitempty"`
	Status UnsubscribeStatus `json:"status,omitempty"`

	// flag fields
	Level Priority `json:"level,omitempty"`

	Rationale string `json:"rationale"`
}

// AgentDecision is the per-email result of one pipeline pass.
type AgentDecision struct {
	EmailID  string        `json:"emailId"`
	Category Category      `json:"category"`
	Priority Priority      `json:"priority"`
	Summary  EmailSummary  `json:"summary"`
	Actions  []AgentAction `json:"actions"`
}

// AgentResponse is the batch result: one decision per input email, in input
// order, sharing a single processing timestamp.
type AgentResponse struct {
	ProcessedAt time.Time       `json:"processedAt"`
	Decisions   []AgentDecision `json:"decisions"`
}
