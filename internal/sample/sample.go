// Package sample ships a small demo inbox used by the CLI and the
// dashboard when no real batch is supplied.
package sample

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/inbox-triage/triage/internal/agent"
)

//go:embed inbox.yaml
var inboxYAML []byte

type inboxFile struct {
	Emails []agent.Email `yaml:"emails"`
}

// Inbox returns a fresh copy of the embedded demo inbox.
func Inbox() ([]agent.Email, error) {
	var file inboxFile
	if err := yaml.Unmarshal(inboxYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse embedded inbox: %w", err)
	}
	return file.Emails, nil
}
