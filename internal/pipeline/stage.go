package pipeline

import (
	"strings"
	"time"
)

// TopicPlaceholder is replaced with the run's topic in stage instructions.
const TopicPlaceholder = "{{topic}}"

// SearchMode declares whether a stage may use the search collaborator.
type SearchMode int

const (
	// SearchNone never hands a searcher to the model.
	SearchNone SearchMode = iota
	// SearchPreferred hands the searcher over when one is configured and
	// otherwise runs the stage without it.
	SearchPreferred
	// SearchRequired fails the stage with CollaboratorUnavailableError when
	// no searcher is configured.
	SearchRequired
)

func (m SearchMode) String() string {
	switch m {
	case SearchPreferred:
		return "preferred"
	case SearchRequired:
		return "required"
	default:
		return "none"
	}
}

// Persona is the role a stage speaks as.
type Persona struct {
	Role      string
	Goal      string
	Backstory string
}

// Stage is one role-scoped generation step. Stages are immutable once built;
// the accessors return copies.
type Stage struct {
	id             string
	persona        Persona
	instruction    string
	expectedOutput string
	upstream       []string
	search         SearchMode
}

// StageOption configures optional Stage fields.
type StageOption func(*Stage)

// WithExpectedOutput documents the shape the stage should produce. It is
// passed to the model but never validated.
func WithExpectedOutput(desc string) StageOption {
	return func(s *Stage) { s.expectedOutput = strings.TrimSpace(desc) }
}

// WithUpstream declares the stages whose results become this stage's context,
// in the given order.
func WithUpstream(ids ...string) StageOption {
	return func(s *Stage) { s.upstream = append(s.upstream, ids...) }
}

// WithSearch sets the stage's search capability.
func WithSearch(mode SearchMode) StageOption {
	return func(s *Stage) { s.search = mode }
}

// NewStage validates and builds a Stage.
func NewStage(id string, persona Persona, instruction string, opts ...StageOption) (Stage, error) {
	s := Stage{
		id:          strings.TrimSpace(id),
		persona:     persona,
		instruction: instruction,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.id == "" {
		return Stage{}, ConfigurationError{Reason: "stage id is required"}
	}
	if strings.TrimSpace(persona.Role) == "" || strings.TrimSpace(persona.Goal) == "" {
		return Stage{}, ConfigurationError{Reason: "stage " + s.id + ": persona role and goal are required"}
	}
	if strings.TrimSpace(instruction) == "" {
		return Stage{}, ConfigurationError{Reason: "stage " + s.id + ": instruction is required"}
	}
	for _, up := range s.upstream {
		if strings.TrimSpace(up) == "" {
			return Stage{}, ConfigurationError{Reason: "stage " + s.id + ": empty upstream reference"}
		}
	}
	return s, nil
}

// ID returns the stage identifier, unique within a plan.
func (s Stage) ID() string { return s.id }

// Persona returns the role, goal and backstory the model adopts.
func (s Stage) Persona() Persona { return s.persona }

// Instruction returns the unresolved instruction, placeholder included.
func (s Stage) Instruction() string { return s.instruction }

// ExpectedOutput describes the shape of the text the stage should produce.
func (s Stage) ExpectedOutput() string { return s.expectedOutput }

// Search reports how the stage uses the search collaborator.
func (s Stage) Search() SearchMode { return s.search }

// Upstream returns a copy of the stage ids whose results feed this stage.
func (s Stage) Upstream() []string { return append([]string(nil), s.upstream...) }

// resolve substitutes the run topic into the instruction.
func (s Stage) resolve(topic string) string {
	return strings.ReplaceAll(s.instruction, TopicPlaceholder, topic)
}

// StageResult is the verbatim text a stage produced.
type StageResult struct {
	StageID  string
	Text     string
	Duration time.Duration
}

// Outcome is a completed run. Artifact is the last stage's text.
type Outcome struct {
	RunID    string
	Topic    string
	Results  []StageResult
	Artifact string
}
