package agent

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"text/template"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

const (
	replyTone       = "formal"
	replyConfidence = 0.86
	replyRationale  = "Important keywords detected; structured formal response generated."

	replyPointMaxLen = 100
)

// Follow-up task triggers, checked in order against the raw body. Each
// trigger that fires adds its task.
var (
	deadlineMention   = regexp.MustCompile(`(?i)\bdeadline\b|\bby (monday|tuesday|wednesday|thursday|friday|week\b)`)
	attachmentMention = regexp.MustCompile(`(?i)\battach(ed)?\b|\battachment\b`)
	meetingMention    = regexp.MustCompile(`(?i)\bmeeting\b|\bcall\b`)
)

// actionableSentence selects sentences that ask for something concrete,
// including "by <day-of-month> <month>" style dates.
var actionableSentence = regexp.MustCompile(`(?i)(please|could you|can you|request|deadline|by\s+\d{1,2}\s+\w+)`)

// replyData feeds the embedded reply template.
type replyData struct {
	Greeting  string
	Subject   string
	KeyPoints []string
	SignOff   string
}

func parseReplyTemplate() (*template.Template, error) {
	content, err := embeddedTemplates.ReadFile("templates/reply.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded reply template: %w", err)
	}
	tmpl, err := template.New("reply").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse reply template: %w", err)
	}
	return tmpl, nil
}

// buildReplyAction drafts a formal reply to an important email.
func (a *Agent) buildReplyAction(email Email) AgentAction {
	greeting := email.SenderName
	if greeting == "" {
		greeting = NameFromAddress(email.SenderEmail)
	}

	data := replyData{
		Greeting:  greeting,
		Subject:   email.Subject,
		KeyPoints: extractActionablePoints(email.Body),
		SignOff:   a.signOff,
	}

	var buf bytes.Buffer
	if err := a.replyTmpl.Execute(&buf, data); err != nil {
		// The template is static and the data plain strings; degrade to a
		// bare acknowledgement rather than aborting the batch.
		buf.Reset()
		fmt.Fprintf(&buf, "Dear %s,\n\nThank you for your message regarding %q.", greeting, email.Subject)
	}

	return AgentAction{
		Type:          ActionReply,
		Subject:       "Re: " + email.Subject,
		Body:          buf.String(),
		Tone:          replyTone,
		FollowUpTasks: deriveFollowUpTasks(email.Body),
		Confidence:    replyConfidence,
		Rationale:     replyRationale,
	}
}

// extractActionablePoints pulls the sentences that request something from
// the recipient, falling back to the first two sentences when nothing
// matches.
func extractActionablePoints(body string) []string {
	sentences := SplitSentences(body)

	var actionable []string
	for _, sentence := range sentences {
		if actionableSentence.MatchString(sentence) {
			actionable = append(actionable, Truncate(sentence, replyPointMaxLen))
		}
	}
	if len(actionable) > 0 {
		return actionable
	}

	if len(sentences) > 2 {
		sentences = sentences[:2]
	}
	points := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		points = append(points, Truncate(sentence, replyPointMaxLen))
	}
	return points
}

// deriveFollowUpTasks scans the raw body for commitments worth tracking.
// Trigger order is fixed: deadline, attachment, meeting. A generic task is
// emitted when nothing fires.
func deriveFollowUpTasks(body string) []string {
	var tasks []string

	if deadlineMention.MatchString(body) {
		tasks = append(tasks, "Confirm delivery timeline and deadline alignment.")
	}
	if attachmentMention.MatchString(body) {
		tasks = append(tasks, "Verify that referenced attachments were received and reviewed.")
	}
	if meetingMention.MatchString(body) {
		tasks = append(tasks, "Propose specific meeting slots within the next 48 hours.")
	}

	if len(tasks) == 0 {
		tasks = append(tasks, "Acknowledge receipt and capture key commitments in CRM.")
	}
	return tasks
}
