package strategist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/CarrotView/carrotview-server/internal/worker/domain"
)

const systemInstruction = "Return strict JSON only."

// ChatCompleter is the slice of the OpenAI client the strategist needs,
// kept narrow so tests can fake the upstream.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Strategist turns crawled site text into a structured marketing plan via
// a single low-temperature chat completion.
type Strategist struct {
	client ChatCompleter
	model  string
	logger *slog.Logger
}

// New creates a Strategist for the given model.
func New(client ChatCompleter, model string, logger *slog.Logger) *Strategist {
	return &Strategist{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Synthesize sends the strategy prompt and parses the response as a Plan.
// A malformed response is a hard failure; there is no repair pass.
func (s *Strategist) Synthesize(ctx context.Context, siteURL, combinedText string) (*domain.Plan, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.4,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: buildStrategyPrompt(siteURL, combinedText)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("strategy completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("strategy completion returned no choices")
	}

	raw := resp.Choices[0].Message.Content

	var plan domain.Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("strategy response is not valid JSON: %w", err)
	}

	s.logger.Debug("Strategy synthesized",
		slog.String("product", plan.Product),
		slog.Int("prompt_a_len", len(plan.PromptA)),
		slog.Int("prompt_b_len", len(plan.PromptB)),
	)

	return &plan, nil
}

// buildStrategyPrompt embeds the fixed key schema, length constraints and
// vertical-video assumption into one instruction.
func buildStrategyPrompt(siteURL, combinedText string) string {
	return `You are a product marketing strategist. Analyze the website content and return strict JSON with the following keys:
- product: short name
- industry: industry segment
- target_users: array of primary user roles
- value_props: array of concise value propositions
- differentiators: array of unique advantages
- competitors: array of likely competitors
- message_framework: object with keys hook, problem, solution, cta (each should be concise and distinct)
- style_controls: object with keys visual_style, pacing, camera_technique, mood
- prompt_a: compiled video prompt from the framework and style controls
- prompt_b: alternate compiled video prompt with a different opening hook
- tone: short description of tone

Rules:
- Output ONLY JSON. No markdown.
- Make prompts vivid, concrete, and suitable for a text-to-video model.
- Keep hook/problem/solution/cta each under 30 words.
- Keep each compiled prompt under 120 words.
- Assume vertical 9:16 format.
- Ensure hook and solution are never semantically identical.
- In message_framework.solution, explicitly explain how the company from the submitted URL solves the user's problem using its product features and domain expertise.
- Avoid generic solution language; include concrete capability-level wording.

Website URL: ` + siteURL + `

Website content:
` + combinedText
}

// CompileFromStrategy builds a video prompt from the plan's message
// framework and style controls, in fixed order: hook, problem, solution,
// call to action, then the style lines. Empty fields are skipped. Used
// when the model omits a direct prompt_a, and to compile image prompts.
func CompileFromStrategy(plan *domain.Plan) string {
	if plan == nil {
		return ""
	}

	var parts []string
	add := func(s string) {
		s = strings.TrimSuffix(strings.TrimSpace(s), ".")
		if s != "" {
			parts = append(parts, s)
		}
	}

	if fw := plan.MessageFramework; fw != nil {
		add(fw.Hook)
		add(fw.Problem)
		add(fw.Solution)
		add(fw.CTA)
	}
	if st := plan.StyleControls; st != nil {
		if st.VisualStyle != "" {
			add("Visual style: " + st.VisualStyle)
		}
		if st.Pacing != "" {
			add("Pacing: " + st.Pacing)
		}
		if st.CameraTechnique != "" {
			add("Camera: " + st.CameraTechnique)
		}
		if st.Mood != "" {
			add("Mood: " + st.Mood)
		}
	}

	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ". ") + "."
}

// HookVariant derives the B-variant prompt from the A prompt when the
// plan carries no distinct prompt_b.
func HookVariant(prompt string) string {
	return prompt + " Open with a different hook: lead with a bold claim instead of a question."
}
