package types

import (
	"fmt"
	"strings"
)

// ReferenceType classifies a reference image.
type ReferenceType string

const (
	RefProduct        ReferenceType = "product"
	RefTalent         ReferenceType = "talent"
	RefBrandLogo      ReferenceType = "brand_logo"
	RefStyleReference ReferenceType = "style_reference"
)

// Valid reports whether t is a known reference type.
func (t ReferenceType) Valid() bool {
	switch t {
	case RefProduct, RefTalent, RefBrandLogo, RefStyleReference:
		return true
	}
	return false
}

// IsHuman reports whether images of this type depict a person.
func (t ReferenceType) IsHuman() bool {
	return t == RefTalent
}

// ReferenceImage is an image passed to the model as visual guidance.
type ReferenceImage struct {
	URL         string        `json:"url"`
	Type        ReferenceType `json:"type"`
	Description string        `json:"description,omitempty"`
}

// StylePreset selects a style modifier and its negative tokens.
type StylePreset string

const (
	StyleMinimal     StylePreset = "minimal"
	StyleBold        StylePreset = "bold"
	StyleLifestyle   StylePreset = "lifestyle"
	StylePromotional StylePreset = "promotional"
)

// StylePresets lists the known presets in a stable order.
var StylePresets = []StylePreset{StyleMinimal, StyleBold, StyleLifestyle, StylePromotional}

// Valid reports whether s is a known preset.
func (s StylePreset) Valid() bool {
	for _, p := range StylePresets {
		if s == p {
			return true
		}
	}
	return false
}

// ContentType is the kind of asset a job produces.
type ContentType string

const (
	ContentImage ContentType = "image"
	ContentVideo ContentType = "video"
)

// OutputFormat is a named image output size.
type OutputFormat struct {
	Name        string `json:"name"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

// Ratio returns the explicit aspect ratio or the reduced W:H.
func (f OutputFormat) Ratio() string {
	if f.AspectRatio != "" {
		return f.AspectRatio
	}
	if f.Width <= 0 || f.Height <= 0 {
		return ""
	}
	g := gcd(f.Width, f.Height)
	return fmt.Sprintf("%d:%d", f.Width/g, f.Height/g)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ParseAspectRatio splits "W:H" into its two positive terms.
func ParseAspectRatio(ratio string) (w, h int, err error) {
	parts := strings.Split(ratio, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid aspect ratio %q", ratio)
	}
	if _, err := fmt.Sscanf(parts[0]+" "+parts[1], "%d %d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("invalid aspect ratio %q: %w", ratio, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid aspect ratio %q", ratio)
	}
	return w, h, nil
}

// Common output formats used by marketing channels.
var (
	FormatSquare    = OutputFormat{Name: "instagram_square", Width: 1080, Height: 1080}
	FormatPortrait  = OutputFormat{Name: "instagram_portrait", Width: 1080, Height: 1350}
	FormatStory     = OutputFormat{Name: "story", Width: 1080, Height: 1920}
	FormatLandscape = OutputFormat{Name: "landscape", Width: 1920, Height: 1080}
)

// KnownOutputFormats lists the named formats accepted by OutputFormatByName.
var KnownOutputFormats = []OutputFormat{FormatSquare, FormatPortrait, FormatStory, FormatLandscape}

// OutputFormatByName resolves a known format name, or a custom "WxH" size.
func OutputFormatByName(name string) (OutputFormat, bool) {
	for _, f := range KnownOutputFormats {
		if f.Name == name {
			return f, true
		}
	}
	var w, h int
	if n, err := fmt.Sscanf(name, "%dx%d", &w, &h); err == nil && n == 2 && w > 0 && h > 0 {
		return OutputFormat{Name: name, Width: w, Height: h}, true
	}
	return OutputFormat{}, false
}
