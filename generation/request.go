package generation

import "github.com/BaSui01/creativeflow/types"

// ImageRequest 图像生成请求
type ImageRequest struct {
	BrandID         string                 `json:"brand_id"`
	ProductID       string                 `json:"product_id,omitempty"`
	TalentID        string                 `json:"talent_id,omitempty"`
	Prompt          string                 `json:"prompt"`
	NegativePrompt  string                 `json:"negative_prompt,omitempty"`
	StylePreset     types.StylePreset      `json:"style_preset,omitempty"`
	OutputFormats   []types.OutputFormat   `json:"output_formats"`
	Variations      int                    `json:"variations,omitempty"` // 0 表示 1
	Seed            *int64                 `json:"seed,omitempty"`
	ReferenceImages []types.ReferenceImage `json:"reference_images,omitempty"`
}

// VariationCount returns the effective number of variations.
func (r *ImageRequest) VariationCount() int {
	return effectiveVariations(r.Variations)
}

// VideoRequest 视频生成请求
type VideoRequest struct {
	BrandID         string                 `json:"brand_id"`
	ProductID       string                 `json:"product_id,omitempty"`
	TalentID        string                 `json:"talent_id,omitempty"`
	Prompt          string                 `json:"prompt"`
	NegativePrompt  string                 `json:"negative_prompt,omitempty"`
	StylePreset     types.StylePreset      `json:"style_preset,omitempty"`
	DurationSeconds int                    `json:"duration"`
	AspectRatio     string                 `json:"aspect_ratio"`
	Variations      int                    `json:"variations,omitempty"`
	Seed            *int64                 `json:"seed,omitempty"`
	ReferenceImages []types.ReferenceImage `json:"reference_images,omitempty"`
}

// VariationCount returns the effective number of variations.
func (r *VideoRequest) VariationCount() int {
	return effectiveVariations(r.Variations)
}

func effectiveVariations(n int) int {
	if n == 0 {
		return 1
	}
	return n
}
