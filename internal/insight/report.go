package insight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mtokuda/honeysift/internal/category"
)

// NoDataStatus is the status string carried by a report generated from zero
// commands. Callers distinguish "no data" from a real report via HasData,
// never via an error.
const NoDataStatus = "no commands found"

// Report summarizes one batch of classified commands. It marshals to the JSON
// document consumed by the dashboard layer.
type Report struct {
	Status              string                             `json:"status,omitempty"`
	TotalCommands       int                                `json:"total_commands,omitempty"`
	CategoryCounts      map[category.Label]int             `json:"category_counts,omitempty"`
	CategoryPercentages map[category.Label]float64         `json:"category_percentages,omitempty"`
	TopCommands         map[category.Label]CommandCounts   `json:"top_commands_by_category,omitempty"`
	AttackFocus         category.Label                     `json:"attack_focus,omitempty"`
}

// NoData returns the status-only report used when there is nothing to report.
func NoData() *Report {
	return &Report{Status: NoDataStatus}
}

// HasData reports whether r is a real report rather than a "no data" result.
func (r *Report) HasData() bool {
	return r != nil && r.Status == "" && r.TotalCommands > 0
}

// CommandCount is one command and how many times it was observed.
type CommandCount struct {
	Command string
	Count   int
}

// CommandCounts is a frequency ranking that keeps its order through JSON:
// it marshals to an ordered JSON object {"cmd": n, ...} and unmarshals back
// preserving key order, which plain Go maps cannot do.
type CommandCounts []CommandCount

func (cc CommandCounts) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, c := range cc {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(c.Command)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(c.Count))
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (cc *CommandCounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("command counts: expected object, got %v", tok)
	}
	out := make(CommandCounts, 0, 5)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("command counts: non-string key %v", keyTok)
		}
		var n int
		if err := dec.Decode(&n); err != nil {
			return err
		}
		out = append(out, CommandCount{Command: key, Count: n})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*cc = out
	return nil
}
