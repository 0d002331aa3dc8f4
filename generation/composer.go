package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/BaSui01/creativeflow/generation/prompt"
	"github.com/BaSui01/creativeflow/types"
)

// EntityProvider reads domain entities owned by the CRUD service.
type EntityProvider interface {
	Brand(ctx context.Context, id string) (*types.Brand, error)
	Product(ctx context.Context, id string) (*types.Product, error)
	Talent(ctx context.Context, id string) (*types.Talent, error)
}

// Brief is a caller's creative intent before prompt assembly.
type Brief struct {
	BrandID         string                 `json:"brand_id" yaml:"brand_id"`
	ProductID       string                 `json:"product_id,omitempty" yaml:"product_id"`
	TalentID        string                 `json:"talent_id,omitempty" yaml:"talent_id"`
	Archetype       string                 `json:"archetype,omitempty" yaml:"archetype"`
	Style           types.StylePreset      `json:"style_preset,omitempty" yaml:"style_preset"`
	CustomPrompt    string                 `json:"custom_prompt,omitempty" yaml:"custom_prompt"`
	CustomModifier  string                 `json:"custom_modifier,omitempty" yaml:"custom_modifier"`
	NegativePrompt  string                 `json:"negative_prompt,omitempty" yaml:"negative_prompt"`
	SkipQuality     bool                   `json:"skip_quality,omitempty" yaml:"skip_quality"`
	OutputFormats   []types.OutputFormat   `json:"output_formats,omitempty" yaml:"output_formats"`
	DurationSeconds int                    `json:"duration,omitempty" yaml:"duration"`
	AspectRatio     string                 `json:"aspect_ratio,omitempty" yaml:"aspect_ratio"`
	Variations      int                    `json:"variations,omitempty" yaml:"variations"`
	Seed            *int64                 `json:"seed,omitempty" yaml:"seed"`
	ExtraReferences []types.ReferenceImage `json:"reference_images,omitempty" yaml:"reference_images"`
}

// Composer turns a Brief into a request using entity data and the prompt assembler.
type Composer struct {
	entities  EntityProvider
	assembler *prompt.Assembler
}

// NewComposer 创建请求组装器. assembler 为 nil 时使用默认配置.
func NewComposer(entities EntityProvider, assembler *prompt.Assembler) *Composer {
	if assembler == nil {
		assembler = prompt.NewAssembler(prompt.DefaultConfig())
	}
	return &Composer{entities: entities, assembler: assembler}
}

// ComposeImage builds an image request. The default archetype is product_hero when a
// product is given, social_post otherwise.
func (c *Composer) ComposeImage(ctx context.Context, b Brief) (*ImageRequest, *prompt.Result, error) {
	if b.Archetype == "" {
		b.Archetype = prompt.ArchetypeSocialPost
		if b.ProductID != "" {
			b.Archetype = prompt.ArchetypeProductHero
		}
	}
	res, err := c.assemble(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	return &ImageRequest{
		BrandID:         b.BrandID,
		ProductID:       b.ProductID,
		TalentID:        b.TalentID,
		Prompt:          res.Prompt,
		NegativePrompt:  res.NegativePrompt,
		StylePreset:     b.Style,
		OutputFormats:   b.OutputFormats,
		Variations:      b.Variations,
		Seed:            b.Seed,
		ReferenceImages: res.ReferenceImages,
	}, res, nil
}

// ComposeVideo builds a video request. The default archetype is video_spot.
func (c *Composer) ComposeVideo(ctx context.Context, b Brief) (*VideoRequest, *prompt.Result, error) {
	if b.Archetype == "" {
		b.Archetype = prompt.ArchetypeVideoSpot
	}
	res, err := c.assemble(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	return &VideoRequest{
		BrandID:         b.BrandID,
		ProductID:       b.ProductID,
		TalentID:        b.TalentID,
		Prompt:          res.Prompt,
		NegativePrompt:  res.NegativePrompt,
		StylePreset:     b.Style,
		DurationSeconds: b.DurationSeconds,
		AspectRatio:     b.AspectRatio,
		Variations:      b.Variations,
		Seed:            b.Seed,
		ReferenceImages: res.ReferenceImages,
	}, res, nil
}

func (c *Composer) assemble(ctx context.Context, b Brief) (*prompt.Result, error) {
	if strings.TrimSpace(b.BrandID) == "" {
		return nil, types.NewValidationError("brand_id", "brand_id is required")
	}
	brand, err := c.entities.Brand(ctx, b.BrandID)
	if err != nil {
		return nil, fmt.Errorf("load brand %s: %w", b.BrandID, err)
	}
	var product *types.Product
	if b.ProductID != "" {
		if product, err = c.entities.Product(ctx, b.ProductID); err != nil {
			return nil, fmt.Errorf("load product %s: %w", b.ProductID, err)
		}
	}
	var talent *types.Talent
	if b.TalentID != "" {
		if talent, err = c.entities.Talent(ctx, b.TalentID); err != nil {
			return nil, fmt.Errorf("load talent %s: %w", b.TalentID, err)
		}
	}

	vars := prompt.VariablesFromEntities(brand, product, talent)
	if b.CustomModifier != "" {
		vars[prompt.VarCustomModifier] = b.CustomModifier
	}
	refs := append(prompt.CollectReferenceImages(brand, product, talent), b.ExtraReferences...)

	return c.assembler.Assemble(prompt.Input{
		Archetype:       b.Archetype,
		Style:           b.Style,
		Variables:       vars,
		CustomPrompt:    b.CustomPrompt,
		SkipQuality:     b.SkipQuality,
		NegativePrompt:  b.NegativePrompt,
		ReferenceImages: refs,
	})
}
