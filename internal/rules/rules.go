// Package rules loads the operator-editable classification rules file. The
// file is YAML; its shape is validated against an embedded JSON schema before
// use so a typo fails loudly at load time instead of silently disabling a
// payment channel.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/invoices-tracker/internal/common"
)

// Rules is the parsed rules file.
type Rules struct {
	// PaymentMarkers maps a payment channel label (e.g. "VB", "IL") to the
	// case-insensitive substrings that select it.
	PaymentMarkers map[string][]string `yaml:"payment_markers" json:"payment_markers"`
	// ShekelChannel is the channel forced onto shekel-denominated invoices.
	ShekelChannel string `yaml:"shekel_channel" json:"shekel_channel"`
}

// DefaultShekelChannel is applied when the rules file does not set one.
const DefaultShekelChannel = "IL"

// Default returns the built-in rules used when no rules file exists.
func Default() *Rules {
	return &Rules{
		PaymentMarkers: map[string][]string{
			"VB": {"scanmarker", "pay via vb"},
			"IL": {"topscan", "pay via il"},
		},
		ShekelChannel: DefaultShekelChannel,
	}
}

// Load reads and validates the rules file at path. A missing file yields the
// built-in defaults; a present but invalid file is an error.
func Load(path string) (*Rules, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, common.WrapError(err, "read rules file")
	}
	return Parse(content)
}

// Parse decodes and validates raw YAML rules content.
func Parse(content []byte) (*Rules, error) {
	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, common.NewAppError("RULES_PARSE", "rules file is not valid YAML", err)
	}
	if err := validateRules(raw); err != nil {
		return nil, common.NewAppError("RULES_SCHEMA", "rules file does not match schema", err)
	}

	var r Rules
	if err := yaml.Unmarshal(content, &r); err != nil {
		return nil, common.NewAppError("RULES_PARSE", "rules file structure mismatch", err)
	}
	if r.PaymentMarkers == nil {
		r.PaymentMarkers = map[string][]string{}
	}
	if r.ShekelChannel == "" {
		r.ShekelChannel = DefaultShekelChannel
	}
	return &r, nil
}

// Validate re-checks an in-memory rules value, for rules received over the
// API rather than from disk.
func (r *Rules) Validate() error {
	m := map[string]any{}
	if r.PaymentMarkers != nil {
		markers := map[string]any{}
		for ch, kws := range r.PaymentMarkers {
			list := make([]any, len(kws))
			for i, kw := range kws {
				list[i] = kw
			}
			markers[ch] = list
		}
		m["payment_markers"] = markers
	}
	if r.ShekelChannel != "" {
		m["shekel_channel"] = r.ShekelChannel
	}
	if err := validateRules(m); err != nil {
		return common.NewAppError("RULES_SCHEMA", "rules do not match schema", err)
	}
	return nil
}

// Markers returns the marker table, never nil.
func (r *Rules) Markers() map[string][]string {
	if r == nil || r.PaymentMarkers == nil {
		return map[string][]string{}
	}
	return r.PaymentMarkers
}

// Channels returns the configured channel labels.
func (r *Rules) Channels() []string {
	out := make([]string, 0, len(r.Markers()))
	for ch := range r.Markers() {
		out = append(out, ch)
	}
	return out
}

func (r *Rules) String() string {
	return fmt.Sprintf("rules(channels=%d, shekel_channel=%s)", len(r.Markers()), r.ShekelChannel)
}
