package pipeline

import "context"

// Searcher runs a free-text web query and returns free-text findings the
// language model may cite. The format of the findings is opaque to the runner.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// LanguageModel generates the text of one stage.
type LanguageModel interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ContextEntry is one upstream stage result handed to a later stage.
type ContextEntry struct {
	StageID string
	Text    string
}

// Request is everything a LanguageModel receives for a stage. Search is nil
// when the stage may not search; otherwise the model may call it any number
// of times before answering.
type Request struct {
	StageID        string
	Persona        Persona
	Instruction    string
	ExpectedOutput string
	Context        []ContextEntry
	Search         Searcher
}

// SearchFunc adapts a function to the Searcher interface.
type SearchFunc func(ctx context.Context, query string) (string, error)

func (f SearchFunc) Search(ctx context.Context, query string) (string, error) {
	return f(ctx, query)
}

// LanguageModelFunc adapts a function to the LanguageModel interface.
type LanguageModelFunc func(ctx context.Context, req Request) (string, error)

func (f LanguageModelFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
