package prompt

import "github.com/BaSui01/creativeflow/types"

// Style is a style preset's modifier text and negative tokens.
type Style struct {
	Preset    types.StylePreset
	Modifier  string
	Negatives []string
}

var builtinStyles = map[types.StylePreset]Style{
	types.StyleMinimal: {
		Preset:    types.StyleMinimal,
		Modifier:  "Minimalist aesthetic: generous negative space, clean geometry, a restrained palette anchored on {brand_colors}.",
		Negatives: []string{"clutter", "busy background", "excessive props", "heavy textures"},
	},
	types.StyleBold: {
		Preset:    types.StyleBold,
		Modifier:  "Bold aesthetic: saturated {brand_colors}, strong contrast, graphic shapes and confident framing.",
		Negatives: []string{"muted colors", "flat contrast", "washed out", "timid composition"},
	},
	types.StyleLifestyle: {
		Preset:    types.StyleLifestyle,
		Modifier:  "Lifestyle aesthetic: candid and warm, real environments, natural imperfections kept.",
		Negatives: []string{"staged poses", "sterile studio", "plastic skin", "stock photo look"},
	},
	types.StylePromotional: {
		Preset:    types.StylePromotional,
		Modifier:  "Promotional aesthetic: high energy retail look, product prominence, space reserved for offer copy for {brand_name}.",
		Negatives: []string{"dull lighting", "hidden product", "cropped packaging"},
	},
}

// UniversalNegatives are appended to every negative prompt.
var UniversalNegatives = []string{
	"low quality",
	"blurry",
	"distorted",
	"deformed hands",
	"extra limbs",
	"watermark",
	"text artifacts",
	"misspelled logo",
	"jpeg artifacts",
}

// qualityModifiers per content type, enabled unless the caller opts out.
var qualityModifiers = map[types.ContentType]string{
	types.ContentImage: "Ultra high resolution, sharp focus, professional color grading, commercial print quality.",
	types.ContentVideo: "High resolution footage, stable camera, consistent subject identity, cinematic color grading.",
}
