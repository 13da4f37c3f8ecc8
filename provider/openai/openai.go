package openai_provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/foodinsight/huginn/internal/pipeline"
	"github.com/sashabaranov/go-openai"
)

const searchToolName = "web_search"

// Options configures a Client. Any OpenAI-compatible endpoint works; Groq is
// the default deployment.
type Options struct {
	APIKey        string
	BaseURL       string
	Model         string
	Temperature   float64
	MaxTokens     int
	Timeout       time.Duration
	MaxToolRounds int
	Debug         bool
	Logger        *log.Logger
}

// Client implements pipeline.LanguageModel over the chat completions API.
// When a stage may search, the searcher is offered to the model as the
// web_search function tool.
type Client struct {
	api           *openai.Client
	model         string
	temperature   float32
	maxTokens     int
	maxToolRounds int
	debug         bool
	logger        *log.Logger
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[LLM] ", log.LstdFlags)
	}
	rounds := opts.MaxToolRounds
	if rounds <= 0 {
		rounds = 3
	}
	temp := float32(opts.Temperature)
	if temp == 0 {
		// the client drops a zero temperature from the payload
		temp = math.SmallestNonzeroFloat32
	}
	return &Client{
		api:           openai.NewClientWithConfig(cfg),
		model:         opts.Model,
		temperature:   temp,
		maxTokens:     opts.MaxTokens,
		maxToolRounds: rounds,
		debug:         opts.Debug,
		logger:        logger,
	}
}

var searchTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        searchToolName,
		Description: "Search the web. Returns a numbered list of results with titles, links and snippets.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Free-text search query",
				},
			},
			"required": []string{"query"},
		},
	},
}

// Generate runs one stage. Tool calls are resolved against req.Search for at
// most MaxToolRounds rounds, after which the model must answer in text.
func (c *Client) Generate(ctx context.Context, req pipeline.Request) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(req.Persona)},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
	}
	if c.debug {
		c.logger.Printf("Stage %s system prompt:\n%s", req.StageID, messages[0].Content)
		c.logger.Printf("Stage %s user prompt:\n%s", req.StageID, messages[1].Content)
	}

	for round := 0; ; round++ {
		creq := openai.ChatCompletionRequest{
			Model:       c.model,
			Messages:    messages,
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		}
		if req.Search != nil {
			creq.Tools = []openai.Tool{searchTool}
			if round >= c.maxToolRounds {
				creq.ToolChoice = "none"
			}
		}

		started := time.Now()
		resp, err := c.api.CreateChatCompletion(ctx, creq)
		if err != nil {
			return "", failure(err)
		}
		if len(resp.Choices) == 0 {
			return "", failure(errors.New("no choices in response"))
		}
		msg := resp.Choices[0].Message
		c.logger.Printf("Stage %s round %d: %d prompt / %d completion tokens in %v",
			req.StageID, round, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, time.Since(started))

		if len(msg.ToolCalls) == 0 || req.Search == nil {
			if strings.TrimSpace(msg.Content) == "" {
				return "", failure(errors.New("empty completion"))
			}
			if c.debug {
				c.logger.Printf("Stage %s response:\n%s", req.StageID, msg.Content)
			}
			return msg.Content, nil
		}
		if round >= c.maxToolRounds {
			return "", failure(fmt.Errorf("model kept calling tools after %d rounds", c.maxToolRounds))
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			out, err := c.callTool(ctx, req, call)
			if err != nil {
				return "", err
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    out,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}
}

// callTool answers one tool call. Search errors abort the stage; malformed
// calls are reported back to the model so it can retry.
func (c *Client) callTool(ctx context.Context, req pipeline.Request, call openai.ToolCall) (string, error) {
	if call.Function.Name != searchToolName {
		return fmt.Sprintf("unknown tool %q", call.Function.Name), nil
	}
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil || strings.TrimSpace(args.Query) == "" {
		return `invalid arguments: expected {"query": "..."}`, nil
	}
	c.logger.Printf("Stage %s searching: %q", req.StageID, args.Query)
	return req.Search.Search(ctx, args.Query)
}

func failure(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return pipeline.CollaboratorFailureError{Collaborator: "language model", Err: err}
}

func systemPrompt(p pipeline.Persona) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.", p.Role)
	if bs := strings.TrimSpace(p.Backstory); bs != "" {
		b.WriteString(" " + bs)
	}
	fmt.Fprintf(&b, "\nYour personal goal is: %s", p.Goal)
	b.WriteString("\nAnswer in the language of the task. Give only your final answer, without commentary about your process.")
	return b.String()
}

func userPrompt(req pipeline.Request) string {
	var b strings.Builder
	b.WriteString("Current Task: ")
	b.WriteString(strings.TrimSpace(req.Instruction))
	if req.ExpectedOutput != "" {
		b.WriteString("\n\nThis is the expected criteria for your final answer: ")
		b.WriteString(req.ExpectedOutput)
	}
	if len(req.Context) > 0 {
		b.WriteString("\n\nThis is the context you're working with:")
		for _, c := range req.Context {
			fmt.Fprintf(&b, "\n\n--- %s ---\n%s", c.StageID, strings.TrimSpace(c.Text))
		}
	}
	if req.Search != nil {
		fmt.Fprintf(&b, "\n\nYou may call the %s tool before answering.", searchToolName)
	}
	return b.String()
}
