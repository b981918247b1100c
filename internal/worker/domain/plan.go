package domain

// MessageFramework is the four-part message structure the strategist
// produces: one concise line each.
type MessageFramework struct {
	Hook     string `json:"hook,omitempty"`
	Problem  string `json:"problem,omitempty"`
	Solution string `json:"solution,omitempty"`
	CTA      string `json:"cta,omitempty"`
}

// StyleControls steer the look of generated creative.
type StyleControls struct {
	VisualStyle     string `json:"visual_style,omitempty"`
	Pacing          string `json:"pacing,omitempty"`
	CameraTechnique string `json:"camera_technique,omitempty"`
	Mood            string `json:"mood,omitempty"`
}

// Keys of the generated_assets map. Later stages only ever add keys,
// never remove ones an earlier stage wrote.
const (
	AssetImageURL    = "image_url"
	AssetImageKey    = "image_key"
	AssetImagePrompt = "image_prompt"
)

// Plan is the structured marketing strategy stored in summary_json.
// The strategist fills most of it from the crawled site; the image stage
// accumulates results under GeneratedAssets.
type Plan struct {
	Product          string            `json:"product,omitempty"`
	Industry         string            `json:"industry,omitempty"`
	Platform         string            `json:"platform,omitempty"`
	Audience         string            `json:"audience,omitempty"`
	TargetUsers      []string          `json:"target_users,omitempty"`
	ValueProps       []string          `json:"value_props,omitempty"`
	Differentiators  []string          `json:"differentiators,omitempty"`
	Competitors      []string          `json:"competitors,omitempty"`
	MessageFramework *MessageFramework `json:"message_framework,omitempty"`
	StyleControls    *StyleControls    `json:"style_controls,omitempty"`
	PromptA          string            `json:"prompt_a,omitempty"`
	PromptB          string            `json:"prompt_b,omitempty"`
	Tone             string            `json:"tone,omitempty"`
	GeneratedAssets  map[string]string `json:"generated_assets,omitempty"`
}

// MergeAssets adds the given entries to GeneratedAssets without removing
// any existing key. Existing keys are overwritten only when the addition
// carries the same key.
func (p *Plan) MergeAssets(additions map[string]string) {
	if len(additions) == 0 {
		return
	}
	if p.GeneratedAssets == nil {
		p.GeneratedAssets = make(map[string]string, len(additions))
	}
	for k, v := range additions {
		p.GeneratedAssets[k] = v
	}
}

// Canned defaults applied by NormalizePlan so image generation never
// blocks on an incomplete caller-supplied plan.
var (
	defaultPlatform = "vertical_social_video"
	defaultAudience = "prospective customers evaluating the product"

	defaultFramework = MessageFramework{
		Hook:     "Meet the product teams actually talk about",
		Problem:  "Evaluating new tools takes time most teams do not have",
		Solution: "One clear product story, built from the company's own website",
		CTA:      "See it for yourself",
	}

	defaultStyle = StyleControls{
		VisualStyle:     "clean product-focused scenes with bold typography",
		Pacing:          "energetic",
		CameraTechnique: "smooth push-ins and match cuts",
		Mood:            "confident",
	}
)

// NormalizePlan returns a copy of p with every missing section replaced
// by a canned default. A nil plan yields a plan made entirely of
// defaults.
func NormalizePlan(p *Plan) *Plan {
	out := Plan{}
	if p != nil {
		out = *p
	}
	if out.Platform == "" {
		out.Platform = defaultPlatform
	}
	if out.Audience == "" {
		out.Audience = defaultAudience
	}
	if out.MessageFramework == nil {
		fw := defaultFramework
		out.MessageFramework = &fw
	}
	if out.StyleControls == nil {
		st := defaultStyle
		out.StyleControls = &st
	}
	return &out
}
