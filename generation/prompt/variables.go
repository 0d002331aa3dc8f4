package prompt

import (
	"strings"

	"github.com/BaSui01/creativeflow/types"
)

// Variable keys understood by the built-in templates.
const (
	VarBrandName          = "brand_name"
	VarBrandDescription   = "brand_description"
	VarBrandVoice         = "brand_voice"
	VarBrandIndustry      = "brand_industry"
	VarBrandColors        = "brand_colors"
	VarProductName        = "product_name"
	VarProductDescription = "product_description"
	VarProductCategory    = "product_category"
	VarProductFeatures    = "product_features"
	VarTalentName         = "talent_name"
	VarTalentDescription  = "talent_description"
	VarCustomModifier     = "custom_modifier"
)

// VariablesFromEntities builds the variable bag. product and talent may be nil.
func VariablesFromEntities(brand *types.Brand, product *types.Product, talent *types.Talent) Variables {
	vars := Variables{}
	set := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			vars[k] = v
		}
	}
	if brand != nil {
		set(VarBrandName, brand.Name)
		set(VarBrandDescription, brand.Description)
		set(VarBrandVoice, brand.Voice)
		set(VarBrandIndustry, brand.Industry)
		set(VarBrandColors, joinList(brand.Colors))
	}
	if product != nil {
		set(VarProductName, product.Name)
		set(VarProductDescription, product.Description)
		set(VarProductCategory, product.Category)
		set(VarProductFeatures, joinList(product.Features))
	}
	if talent != nil {
		set(VarTalentName, talent.Name)
		set(VarTalentDescription, talent.Description)
	}
	return vars
}

// CollectReferenceImages turns entity image URLs into typed references.
// Order: product shots, brand logo, style references, talent photos.
func CollectReferenceImages(brand *types.Brand, product *types.Product, talent *types.Talent) []types.ReferenceImage {
	var refs []types.ReferenceImage
	add := func(url string, t types.ReferenceType, desc string) {
		if url = strings.TrimSpace(url); url != "" {
			refs = append(refs, types.ReferenceImage{URL: url, Type: t, Description: desc})
		}
	}
	if product != nil {
		for _, u := range product.ImageURLs {
			add(u, types.RefProduct, product.Name)
		}
	}
	if brand != nil {
		add(brand.LogoURL, types.RefBrandLogo, brand.Name+" logo")
		for _, u := range brand.StyleReferenceURLs {
			add(u, types.RefStyleReference, "")
		}
	}
	if talent != nil {
		for _, u := range talent.ImageURLs {
			add(u, types.RefTalent, talent.Name)
		}
	}
	return refs
}

func joinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	return strings.Join(kept, ", ")
}
