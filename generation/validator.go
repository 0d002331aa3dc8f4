package generation

import (
	"fmt"
	"strings"

	"github.com/BaSui01/creativeflow/types"
)

// ValidateImage checks an image request against limits and returns the first violation.
// It performs no I/O.
func ValidateImage(req *ImageRequest, limits Limits) error {
	if req == nil {
		return types.NewValidationError("request", "request is required")
	}
	if err := validateCommon(req.BrandID, req.Prompt, req.StylePreset); err != nil {
		return err
	}
	if len(req.OutputFormats) == 0 {
		return types.NewValidationError("output_formats", "at least one output format is required")
	}
	for i, f := range req.OutputFormats {
		field := fmt.Sprintf("output_formats[%d]", i)
		if strings.TrimSpace(f.Name) == "" {
			return types.NewValidationError(field, "output format name is required")
		}
		if f.Width <= 0 || f.Height <= 0 {
			return types.NewValidationError(field, "width and height must be positive")
		}
		if f.AspectRatio != "" {
			if _, _, err := types.ParseAspectRatio(f.AspectRatio); err != nil {
				return types.NewValidationError(field, err.Error())
			}
		}
	}
	if err := validateVariations(req.Variations, limits); err != nil {
		return err
	}
	if err := validateSeed(req.Seed); err != nil {
		return err
	}
	return validateReferences(req.ReferenceImages, limits)
}

// ValidateVideo checks a video request against limits and returns the first violation.
func ValidateVideo(req *VideoRequest, limits Limits) error {
	if req == nil {
		return types.NewValidationError("request", "request is required")
	}
	if err := validateCommon(req.BrandID, req.Prompt, req.StylePreset); err != nil {
		return err
	}
	if req.DurationSeconds <= 0 {
		return types.NewValidationError("duration", "duration must be greater than 0 seconds")
	}
	if limits.MaxDurationSeconds > 0 && req.DurationSeconds > limits.MaxDurationSeconds {
		return types.NewValidationError("duration",
			fmt.Sprintf("duration must not exceed %d seconds", limits.MaxDurationSeconds))
	}
	if strings.TrimSpace(req.AspectRatio) == "" {
		return types.NewValidationError("aspect_ratio", aspectRatioReason("aspect_ratio is required", limits))
	}
	if !limits.AllowsAspectRatio(req.AspectRatio) {
		return types.NewValidationError("aspect_ratio",
			aspectRatioReason(fmt.Sprintf("unsupported aspect_ratio %q", req.AspectRatio), limits))
	}
	if err := validateVariations(req.Variations, limits); err != nil {
		return err
	}
	if err := validateSeed(req.Seed); err != nil {
		return err
	}
	return validateReferences(req.ReferenceImages, limits)
}

func validateCommon(brandID, prompt string, style types.StylePreset) error {
	if strings.TrimSpace(brandID) == "" {
		return types.NewValidationError("brand_id", "brand_id is required")
	}
	if strings.TrimSpace(prompt) == "" {
		return types.NewValidationError("prompt", "prompt is required")
	}
	if style != "" && !style.Valid() {
		names := make([]string, len(types.StylePresets))
		for i, p := range types.StylePresets {
			names[i] = string(p)
		}
		return types.NewValidationError("style_preset",
			fmt.Sprintf("style_preset must be one of %s", strings.Join(names, ", ")))
	}
	return nil
}

func validateVariations(n int, limits Limits) error {
	n = effectiveVariations(n)
	upper := limits.MaxVariations
	if upper <= 0 {
		upper = 1
	}
	if n < 1 || n > upper {
		return types.NewValidationError("variations", fmt.Sprintf("variations must be between 1 and %d", upper))
	}
	return nil
}

func validateSeed(seed *int64) error {
	if seed != nil && *seed < 0 {
		return types.NewValidationError("seed", "seed must be non-negative")
	}
	return nil
}

func validateReferences(refs []types.ReferenceImage, limits Limits) error {
	if limits.RejectExcessReferences && len(refs) > limits.MaxReferenceImages {
		return types.NewValidationError("reference_images",
			fmt.Sprintf("cannot provide more than %d reference images", limits.MaxReferenceImages))
	}
	for i, ref := range refs {
		field := fmt.Sprintf("reference_images[%d]", i)
		if strings.TrimSpace(ref.URL) == "" {
			return types.NewValidationError(field, "url is required")
		}
		if !ref.Type.Valid() {
			return types.NewValidationError(field,
				"type must be one of product, talent, brand_logo, style_reference")
		}
	}
	return nil
}

func aspectRatioReason(prefix string, limits Limits) string {
	if len(limits.AspectRatios) == 0 {
		return prefix
	}
	return fmt.Sprintf("%s, must be one of %s", prefix, strings.Join(limits.AspectRatios, ", "))
}
