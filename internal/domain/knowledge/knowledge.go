// Package knowledge holds the static wound-care protocol table embedded in
// every analysis prompt. The table is immutable after load.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed protocols.yaml
var embeddedProtocols []byte

// Protocol is one wound-care entry of the reference table.
type Protocol struct {
	WoundType       string   `yaml:"wound_type"`
	TypicalSeverity string   `yaml:"typical_severity"`
	Steps           []string `yaml:"steps"`
	Escalate        string   `yaml:"escalate"`
}

// Base is the full knowledge base shipped to the model with every request.
type Base struct {
	Disclaimer string     `yaml:"disclaimer"`
	Protocols  []Protocol `yaml:"protocols"`

	rendered string
}

// Load parses the embedded protocol table.
func Load() (*Base, error) {
	return parse(embeddedProtocols)
}

// LoadFile parses a protocol table from disk, overriding the embedded one.
func LoadFile(path string) (*Base, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base %s: %w", path, err)
	}
	return parse(raw)
}

func parse(raw []byte) (*Base, error) {
	base := &Base{}
	if err := yaml.Unmarshal(raw, base); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	if base.Disclaimer == "" {
		return nil, fmt.Errorf("knowledge base missing disclaimer")
	}
	if len(base.Protocols) == 0 {
		return nil, fmt.Errorf("knowledge base has no protocols")
	}
	base.rendered = render(base)
	return base, nil
}

// Render returns the protocol table as prompt-ready reference text.
func (b *Base) Render() string {
	return b.rendered
}

func render(b *Base) string {
	var sb strings.Builder
	sb.WriteString("WOUND CARE REFERENCE TABLE\n")
	for _, p := range b.Protocols {
		fmt.Fprintf(&sb, "\n### %s (typical severity: %s)\n", p.WoundType, p.TypicalSeverity)
		for i, step := range p.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
		if p.Escalate != "" {
			fmt.Fprintf(&sb, "Escalation: %s\n", p.Escalate)
		}
	}
	return sb.String()
}
