package prompt

import (
	"fmt"
	"strings"

	"github.com/BaSui01/creativeflow/types"
)

// Config 配置组装器。零值字段在 NewAssembler 中解析为默认值。
type Config struct {
	References ReferenceLimits `json:"references" yaml:"references"`
	// Extra archetypes override built-ins with the same name.
	Extra []Archetype `json:"-" yaml:"-"`
}

// DefaultConfig 返回默认组装配置.
func DefaultConfig() Config {
	return Config{References: DefaultReferenceLimits()}
}

// Input is everything needed to assemble one prompt.
type Input struct {
	Archetype       string
	Style           types.StylePreset
	Variables       Variables
	CustomPrompt    string
	SkipQuality     bool
	NegativePrompt  string
	ReferenceImages []types.ReferenceImage
}

// Result is the assembled prompt.
type Result struct {
	Prompt          string                 `json:"prompt"`
	NegativePrompt  string                 `json:"negative_prompt"`
	Archetype       string                 `json:"archetype"`
	Variant         Variant                `json:"variant"`
	ReferenceImages []types.ReferenceImage `json:"reference_images"`
}

// Assembler is immutable after construction and safe for concurrent use.
type Assembler struct {
	archetypes map[string]Archetype
	limits     ReferenceLimits
}

// NewAssembler creates an assembler with the built-in archetypes and styles.
func NewAssembler(cfg Config) *Assembler {
	if cfg.References == (ReferenceLimits{}) {
		cfg.References = DefaultReferenceLimits()
	}
	return &Assembler{
		archetypes: indexArchetypes(cfg.Extra),
		limits:     cfg.References,
	}
}

// Archetypes lists the known archetype names, sorted.
func (a *Assembler) Archetypes() []string {
	return sortedNames(a.archetypes)
}

// Archetype looks up an archetype by name.
func (a *Assembler) Archetype(name string) (Archetype, bool) {
	arch, ok := a.archetypes[name]
	return arch, ok
}

// Limits returns the reference limits used by Assemble.
func (a *Assembler) Limits() ReferenceLimits {
	return a.limits
}

// Assemble renders the prompt, negative prompt and bounded reference list.
func (a *Assembler) Assemble(in Input) (*Result, error) {
	arch, ok := a.archetypes[in.Archetype]
	if !ok {
		return nil, types.NewValidationError("archetype",
			fmt.Sprintf("unknown archetype %q, must be one of %s", in.Archetype, strings.Join(a.Archetypes(), ", ")))
	}
	var style *Style
	if in.Style != "" {
		s, ok := builtinStyles[in.Style]
		if !ok {
			return nil, types.NewValidationError("style_preset",
				fmt.Sprintf("unknown style preset %q", in.Style))
		}
		style = &s
	}

	vars := in.Variables
	if vars == nil {
		vars = Variables{}
	}

	variant, body := arch.SelectVariant(vars.Has(VarTalentDescription), vars.Has(VarProductName))

	parts := []string{Substitute(strings.Join(body.Sections(), "\n"), vars)}
	if style != nil {
		parts = append(parts, Substitute(style.Modifier, vars))
	}
	if !in.SkipQuality {
		parts = append(parts, qualityModifiers[arch.ContentType])
	}
	if custom := strings.TrimSpace(in.CustomPrompt); custom != "" {
		parts = append(parts, custom)
	}
	if vars.Has(VarCustomModifier) {
		parts = append(parts, strings.TrimSpace(vars[VarCustomModifier]))
	}

	return &Result{
		Prompt:          joinNonEmpty(parts, "\n\n"),
		NegativePrompt:  BuildNegativePrompt(style, in.NegativePrompt),
		Archetype:       arch.Name,
		Variant:         variant,
		ReferenceImages: OrganizeReferenceImages(in.ReferenceImages, a.limits),
	}, nil
}

// BuildNegativePrompt joins style negatives, universal negatives and caller extras, de-duplicated.
func BuildNegativePrompt(style *Style, extra string) string {
	var tokens []string
	if style != nil {
		tokens = append(tokens, style.Negatives...)
	}
	tokens = append(tokens, UniversalNegatives...)
	tokens = append(tokens, strings.Split(extra, ",")...)

	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return strings.Join(out, ", ")
}

// StyleFor returns the built-in style for a preset.
func StyleFor(p types.StylePreset) (Style, bool) {
	s, ok := builtinStyles[p]
	return s, ok
}

func joinNonEmpty(parts []string, sep string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
