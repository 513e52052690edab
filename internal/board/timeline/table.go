package timeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PriorityClass ranks how aggressively a source's leads should be worked.
type PriorityClass string

const (
	PriorityLow    PriorityClass = "low"
	PriorityMedium PriorityClass = "medium"
	PriorityHigh   PriorityClass = "high"
)

// SourceSLA is the per-source deadline policy.
type SourceSLA struct {
	WindowHours int           `yaml:"windowHours"`
	Priority    PriorityClass `yaml:"priority"`
}

// Table maps source tags to their SLA policy. Unknown sources resolve to
// Default.
type Table struct {
	Sources map[string]SourceSLA `yaml:"sources"`
	Default SourceSLA            `yaml:"default"`
}

// DefaultTable returns the built-in SLA table. Paid lead marketplaces get
// tight windows, organic channels get room.
func DefaultTable() Table {
	return Table{
		Sources: map[string]SourceSLA{
			"bobex":     {WindowHours: 24, Priority: PriorityHigh},
			"solvari":   {WindowHours: 24, Priority: PriorityHigh},
			"phone":     {WindowHours: 12, Priority: PriorityHigh},
			"website":   {WindowHours: 72, Priority: PriorityMedium},
			"email":     {WindowHours: 48, Priority: PriorityMedium},
			"facebook":  {WindowHours: 48, Priority: PriorityMedium},
			"referral":  {WindowHours: 96, Priority: PriorityLow},
			"cold_call": {WindowHours: 120, Priority: PriorityLow},
		},
		Default: SourceSLA{WindowHours: 24, Priority: PriorityMedium},
	}
}

// LoadTable reads an SLA table from a YAML file, filling gaps from the
// built-in defaults. An empty path returns the defaults unchanged.
func LoadTable(path string) (Table, error) {
	table := DefaultTable()
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("read sla table: %w", err)
	}

	var override Table
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Table{}, fmt.Errorf("parse sla table: %w", err)
	}

	for source, sla := range override.Sources {
		if sla.WindowHours <= 0 {
			return Table{}, fmt.Errorf("sla table: source %q has non-positive window", source)
		}
		table.Sources[source] = sla
	}
	if override.Default.WindowHours > 0 {
		table.Default = override.Default
	}
	return table, nil
}

// Lookup resolves the SLA policy for a source tag.
func (t Table) Lookup(source string) SourceSLA {
	if sla, ok := t.Sources[source]; ok {
		return sla
	}
	return t.Default
}
