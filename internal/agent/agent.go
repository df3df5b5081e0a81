// Package agent implements the inbox triage pipeline: classification,
// summarization, priority derivation, and action proposal for batches of
// email records. Processing is synchronous and side-effect free; the only
// non-determinism is the batch timestamp.
package agent

import (
	"text/template"
	"time"
)

// DefaultSignOff is the name used to sign drafted replies unless
// configured otherwise.
const DefaultSignOff = "Automated Correspondence Agent"

const (
	unsubscribeFoundRationale    = "Unsubscribe hyperlink discovered and action scheduled."
	unsubscribeNotFoundRationale = "Marketing message detected but no unsubscribe path located. Manual review recommended."
	flagRationale                = "Transactional record for archiving"
)

// Options configures an Agent. Zero values select sensible defaults.
type Options struct {
	// SignOff is the name placed under "Best regards," in drafted replies.
	SignOff string
	// Now supplies the batch timestamp; defaults to time.Now.
	Now func() time.Time
}

// Agent runs the triage pipeline. It is stateless across batches and safe
// for concurrent use.
type Agent struct {
	signOff   string
	now       func() time.Time
	replyTmpl *template.Template
}

// New builds an Agent, parsing the embedded reply template once.
func New(opts Options) (*Agent, error) {
	tmpl, err := parseReplyTemplate()
	if err != nil {
		return nil, err
	}

	if opts.SignOff == "" {
		opts.SignOff = DefaultSignOff
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Agent{
		signOff:   opts.SignOff,
		now:       opts.Now,
		replyTmpl: tmpl,
	}, nil
}

// ProcessInbox runs the pipeline over a batch of emails and returns one
// decision per input, in input order. Inputs are never mutated, and a
// malformed email degrades to an empty summary instead of failing the
// batch.
func (a *Agent) ProcessInbox(emails []Email) AgentResponse {
	decisions := make([]AgentDecision, len(emails))
	for i, email := range emails {
		decisions[i] = a.processEmail(email)
	}

	return AgentResponse{
		ProcessedAt: a.now().UTC(),
		Decisions:   decisions,
	}
}

// processEmail runs the fixed pipeline order for a single email:
// classify, summarize, derive priority, build actions.
func (a *Agent) processEmail(email Email) AgentDecision {
	classification := Classify(email)
	summary := Summarize(email)
	priority := DerivePriority(classification.Category, summary)
	actions := a.buildActions(email, classification)

	return AgentDecision{
		EmailID:  email.ID,
		Category: classification.Category,
		Priority: priority,
		Summary:  summary,
		Actions:  actions,
	}
}

// buildActions dispatches on category. Every category except personal
// yields exactly one action.
func (a *Agent) buildActions(email Email, classification Classification) []AgentAction {
	actions := []AgentAction{}

	switch classification.Category {
	case CategoryImportant:
		actions = append(actions, a.buildReplyAction(email))
	case CategoryMarketing:
		actions = append(actions, buildUnsubscribeAction(email))
	case CategoryTransactional:
		actions = append(actions, buildFlagAction(PriorityMedium, flagRationale))
	}

	return actions
}

func buildUnsubscribeAction(email Email) AgentAction {
	link := ExtractUnsubscribeLink(email.Body)
	if link == "" {
		return AgentAction{
			Type:      ActionUnsubscribe,
			Status:    StatusNotFound,
			Rationale: unsubscribeNotFoundRationale,
		}
	}

	return AgentAction{
		Type:      ActionUnsubscribe,
		Link:      link,
		Status:    StatusCompleted,
		Rationale: unsubscribeFoundRationale,
	}
}

func buildFlagAction(level Priority, rationale string) AgentAction {
	return AgentAction{
		Type:      ActionFlag,
		Level:     level,
		Rationale: rationale,
	}
}
