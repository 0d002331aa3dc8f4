package prompt

import (
	"sort"

	"github.com/BaSui01/creativeflow/types"
)

// Variant identifies which body of an archetype was rendered.
type Variant string

const (
	VariantBase    Variant = "base"
	VariantTalent  Variant = "talent"
	VariantProduct Variant = "product"
)

// Body is one template variant split into its six structural sections.
type Body struct {
	Subject     string `yaml:"subject"`
	Action      string `yaml:"action"`
	Environment string `yaml:"environment"`
	ArtStyle    string `yaml:"art_style"`
	Lighting    string `yaml:"lighting"`
	Details     string `yaml:"details"`
}

// Sections returns the sections in render order.
func (b Body) Sections() []string {
	return []string{b.Subject, b.Action, b.Environment, b.ArtStyle, b.Lighting, b.Details}
}

// Archetype is a content template. Talent and Product are optional variants.
type Archetype struct {
	Name        string            `yaml:"name"`
	ContentType types.ContentType `yaml:"content_type"`
	Base        Body              `yaml:"base"`
	Talent      *Body             `yaml:"talent,omitempty"`
	Product     *Body             `yaml:"product,omitempty"`
}

// SelectVariant picks the body to render.
// Priority: talent (talent_description present) > product (product_name present) > base.
func (a Archetype) SelectVariant(hasTalentDescription, hasProductName bool) (Variant, Body) {
	if hasTalentDescription && a.Talent != nil {
		return VariantTalent, *a.Talent
	}
	if hasProductName && a.Product != nil {
		return VariantProduct, *a.Product
	}
	return VariantBase, a.Base
}

// Built-in archetype names.
const (
	ArchetypeProductHero    = "product_hero"
	ArchetypeLifestyleScene = "lifestyle_scene"
	ArchetypeSocialPost     = "social_post"
	ArchetypeCampaignBanner = "campaign_banner"
	ArchetypeVideoSpot      = "video_spot"
)

// =============================================================================
// 📚 Built-in archetypes
// =============================================================================

var builtinArchetypes = []Archetype{
	{
		Name:        ArchetypeProductHero,
		ContentType: types.ContentImage,
		Base: Body{
			Subject:     "A hero product shot for {brand_name}, {brand_description}",
			Action:      "The product is presented front and center as the single focal point",
			Environment: "Seamless studio backdrop tinted with {brand_colors}",
			ArtStyle:    "Commercial product photography, {brand_voice} tone",
			Lighting:    "Softbox key light with a subtle rim light that separates the product from the background",
			Details:     "Crisp edges, accurate materials, room for a headline in the upper third",
		},
		Product: &Body{
			Subject:     "A hero shot of {product_name} by {brand_name}, {product_description}",
			Action:      "{product_name} stands upright at a slight three-quarter angle, label facing the camera",
			Environment: "Seamless studio backdrop tinted with {brand_colors}, a low reflective plinth under the product",
			ArtStyle:    "Commercial {product_category} photography, {brand_voice} tone",
			Lighting:    "Softbox key light with a subtle rim light that traces the silhouette of {product_name}",
			Details:     "True-to-life packaging, legible logo, highlight {product_features}",
		},
	},
	{
		Name:        ArchetypeLifestyleScene,
		ContentType: types.ContentImage,
		Base: Body{
			Subject:     "An everyday lifestyle moment that embodies {brand_name}",
			Action:      "People interacting naturally in a candid, unposed moment",
			Environment: "A warm, lived-in {brand_industry} setting with props in {brand_colors}",
			ArtStyle:    "Editorial lifestyle photography, {brand_voice} mood",
			Lighting:    "Natural window light with gentle fill",
			Details:     "Authentic textures, shallow depth of field",
		},
		Talent: &Body{
			Subject:     "{talent_name}, {talent_description}, in a lifestyle scene for {brand_name}",
			Action:      "{talent_name} naturally uses the {product_name} product with a relaxed, genuine expression",
			Environment: "A warm, lived-in setting styled with accents in {brand_colors}",
			ArtStyle:    "Editorial lifestyle photography, {brand_voice} mood",
			Lighting:    "Natural window light that flatters skin tones",
			Details:     "Preserve the likeness of {talent_name}, natural hands, the {product_name} product clearly recognizable",
		},
		Product: &Body{
			Subject:     "{product_name} from {brand_name} placed in a real-life context",
			Action:      "{product_name} in use on a tabletop, {product_description}",
			Environment: "A warm, lived-in {product_category} setting with props in {brand_colors}",
			ArtStyle:    "Editorial lifestyle photography, {brand_voice} mood",
			Lighting:    "Natural window light with soft shadows",
			Details:     "Product label readable, highlight {product_features}",
		},
	},
	{
		Name:        ArchetypeSocialPost,
		ContentType: types.ContentImage,
		Base: Body{
			Subject:     "A scroll-stopping social media visual for {brand_name}",
			Action:      "A bold graphic composition with one clear focal point",
			Environment: "Flat color field built from {brand_colors}",
			ArtStyle:    "Modern social content, {brand_voice} voice",
			Lighting:    "Even, high-key lighting",
			Details:     "Mobile-first framing, safe margins for platform UI",
		},
		Talent: &Body{
			Subject:     "{talent_name}, {talent_description}, featured in a social post for {brand_name}",
			Action:      "{talent_name} looks into the camera holding the {product_name} product",
			Environment: "Simple backdrop in {brand_colors}",
			ArtStyle:    "Creator-style social content, {brand_voice} voice",
			Lighting:    "Ring-light style frontal lighting",
			Details:     "Mobile-first framing, keep the face inside the center safe zone",
		},
		Product: &Body{
			Subject:     "{product_name} by {brand_name} as a social post centerpiece",
			Action:      "{product_name} floating at a dynamic angle",
			Environment: "Flat color field built from {brand_colors}",
			ArtStyle:    "Modern social content, {brand_voice} voice",
			Lighting:    "Even, high-key lighting with a soft drop shadow",
			Details:     "Mobile-first framing, emphasize {product_features}",
		},
	},
	{
		Name:        ArchetypeCampaignBanner,
		ContentType: types.ContentImage,
		Base: Body{
			Subject:     "A wide campaign banner for {brand_name}",
			Action:      "A layered composition that leads the eye from left to right",
			Environment: "Abstract brand environment in {brand_colors}",
			ArtStyle:    "Advertising key visual, {brand_voice} tone",
			Lighting:    "Dramatic directional light",
			Details:     "Clear negative space on one side for copy",
		},
		Product: &Body{
			Subject:     "A wide campaign banner featuring {product_name} by {brand_name}",
			Action:      "{product_name} anchored on the right third of the frame",
			Environment: "Abstract brand environment in {brand_colors}",
			ArtStyle:    "Advertising key visual for {product_category}, {brand_voice} tone",
			Lighting:    "Dramatic directional light with a specular highlight on {product_name}",
			Details:     "Clear negative space on the left for copy, {product_description}",
		},
	},
	{
		Name:        ArchetypeVideoSpot,
		ContentType: types.ContentVideo,
		Base: Body{
			Subject:     "A short brand film for {brand_name}, {brand_description}",
			Action:      "A slow push-in camera move revealing the brand world",
			Environment: "A cinematic set dressed in {brand_colors}",
			ArtStyle:    "Cinematic commercial, {brand_voice} tone",
			Lighting:    "Motivated practical lights with soft haze",
			Details:     "Smooth camera motion, no jump cuts",
		},
		Talent: &Body{
			Subject:     "{talent_name}, {talent_description}, starring in a short film for {brand_name}",
			Action:      "{talent_name} turns toward the camera and smiles while using the {product_name} product",
			Environment: "A cinematic set dressed in {brand_colors}",
			ArtStyle:    "Cinematic commercial, {brand_voice} tone",
			Lighting:    "Soft key light on the face with warm practicals behind",
			Details:     "Consistent likeness of {talent_name} across frames, natural motion",
		},
		Product: &Body{
			Subject:     "A product film for {product_name} by {brand_name}",
			Action:      "An orbiting camera move around {product_name}, {product_description}",
			Environment: "A cinematic tabletop set dressed in {brand_colors}",
			ArtStyle:    "Cinematic {product_category} commercial, {brand_voice} tone",
			Lighting:    "Moving rim light that sweeps across {product_name}",
			Details:     "Smooth motion, label stays legible, highlight {product_features}",
		},
	},
}

// BuiltinArchetypes returns a copy of the built-in archetype catalog.
func BuiltinArchetypes() []Archetype {
	out := make([]Archetype, len(builtinArchetypes))
	copy(out, builtinArchetypes)
	return out
}

func indexArchetypes(extra []Archetype) map[string]Archetype {
	m := make(map[string]Archetype, len(builtinArchetypes)+len(extra))
	for _, a := range builtinArchetypes {
		m[a.Name] = a
	}
	for _, a := range extra {
		m[a.Name] = a
	}
	return m
}

func sortedNames(m map[string]Archetype) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
