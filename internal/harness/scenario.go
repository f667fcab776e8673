package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/versets/internal/compare"
	"github.com/roach88/versets/internal/fixture"
)

// Scenario defines a versioning scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the document
	// namespace and the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Declarations lists paths to CUE declaration files.
	// Paths are relative to the base path the scenario was loaded with.
	Declarations []string `yaml:"declarations"`

	// Old is the previously committed model. Nil means an empty store.
	Old *fixture.Model `yaml:"old,omitempty"`

	// New is the model committed over Old.
	New fixture.Model `yaml:"new"`

	// Merge, when present, also merges the two models.
	Merge *MergeStep `yaml:"merge,omitempty"`

	// Assertions validate the commit and merge results.
	Assertions []Assertion `yaml:"assertions"`
}

// MergeStep configures the merge of the old and new models.
type MergeStep struct {
	// Leading is "old" or "new": the side that wins field conflicts.
	Leading string `yaml:"leading"`
}

// Assertion validates one aspect of a scenario result.
type Assertion struct {
	// Type specifies the assertion type:
	// - "partition": the sets of a commit partition, by base name
	// - "modification": the diff classification of one set type
	// - "set_name": the full name of a set type in the actual state
	// - "cycle_count": number of elementary binding cycles
	// - "revision_count": documents written by the final commit
	// - "merge_warnings": number of degraded merges
	// - "merged_field": a field value of a merged object
	Type string `yaml:"type"`

	// Partition names a commit partition (used by partition).
	Partition string `yaml:"partition,omitempty"`

	// Sets are expected base names, in any order (used by partition).
	Sets []string `yaml:"sets,omitempty"`

	// Set is a set type such as "Component" or "Shift<Night>".
	Set string `yaml:"set,omitempty"`

	// Modification is INVARIABLE, CREATED, DELETED or MODIFIED.
	Modification string `yaml:"modification,omitempty"`

	// Name is the expected full set name (used by set_name).
	Name string `yaml:"name,omitempty"`

	// Object is an object identity (used by merged_field).
	Object string `yaml:"object,omitempty"`

	// Field is a field name (used by merged_field).
	Field string `yaml:"field,omitempty"`

	// Value is the expected rendered value (used by merged_field).
	Value string `yaml:"value,omitempty"`

	// Count is the expected number (used by the *_count types).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertPartition     = "partition"
	AssertModification  = "modification"
	AssertSetName       = "set_name"
	AssertCycleCount    = "cycle_count"
	AssertRevisionCount = "revision_count"
	AssertMergeWarnings = "merge_warnings"
	AssertMergedField   = "merged_field"
)

// Partition names accepted by partition assertions.
var partitions = []string{
	"committed", "modified", "created", "deleted",
	"invariable", "bound", "remained", "actual",
}

// LoadScenario reads and parses a scenario YAML file. Declaration paths are
// resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving declaration paths relative to the provided base path.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, p := range scenario.Declarations {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Declarations[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Declarations) == 0 {
		return fmt.Errorf("declarations list is required and must be non-empty")
	}
	for _, p := range s.Declarations {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("declaration file not found: %s", p)
		}
	}
	if s.Old != nil {
		if err := s.Old.Validate(); err != nil {
			return fmt.Errorf("old: %w", err)
		}
	}
	if err := s.New.Validate(); err != nil {
		return fmt.Errorf("new: %w", err)
	}
	if s.Merge != nil && s.Merge.Leading != "old" && s.Merge.Leading != "new" {
		return fmt.Errorf("merge.leading must be \"old\" or \"new\", got %q", s.Merge.Leading)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], s.Merge != nil); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, merging bool) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertPartition:
		if !contains(partitions, a.Partition) {
			return fmt.Errorf("assertions[%d]: partition must be one of %v", index, partitions)
		}
	case AssertModification:
		if a.Set == "" {
			return fmt.Errorf("assertions[%d]: set is required for modification", index)
		}
		if !validModification(a.Modification) {
			return fmt.Errorf("assertions[%d]: unknown modification %q", index, a.Modification)
		}
	case AssertSetName:
		if a.Set == "" || a.Name == "" {
			return fmt.Errorf("assertions[%d]: set and name are required for set_name", index)
		}
	case AssertCycleCount, AssertRevisionCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertMergeWarnings, AssertMergedField:
		if !merging {
			return fmt.Errorf("assertions[%d]: %s requires a merge step", index, a.Type)
		}
		if a.Type == AssertMergedField && (a.Set == "" || a.Object == "" || a.Field == "") {
			return fmt.Errorf("assertions[%d]: set, object and field are required for merged_field", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func validModification(s string) bool {
	for _, m := range []compare.Modification{compare.Invariable, compare.Created, compare.Deleted, compare.Modified} {
		if m.String() == s {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
