// Package fixtures 提供测试用的领域实体与响应样例.
package fixtures

import (
	"fmt"

	"github.com/BaSui01/creativeflow/types"
)

// Brand 返回一个字段齐全的品牌
func Brand() *types.Brand {
	return &types.Brand{
		ID:                 "brand-aurora",
		Name:               "Aurora Coffee",
		Description:        "small-batch specialty coffee roaster",
		Voice:              "warm and crafted",
		Industry:           "coffee",
		Colors:             []string{"cream", "espresso brown", "copper"},
		LogoURL:            "https://cdn.example.com/aurora/logo.png",
		StyleReferenceURLs: []string{"https://cdn.example.com/aurora/mood-1.jpg"},
	}
}

// Product 返回品牌下的一个产品
func Product() *types.Product {
	return &types.Product{
		ID:          "prod-coldbrew",
		BrandID:     "brand-aurora",
		Name:        "Nitro Cold Brew",
		Description: "a slim matte can with copper accents",
		Category:    "beverage",
		Features:    []string{"nitrogen infused", "zero sugar"},
		ImageURLs: []string{
			"https://cdn.example.com/aurora/can-front.png",
			"https://cdn.example.com/aurora/can-side.png",
		},
	}
}

// Talent 返回一个代言人
func Talent() *types.Talent {
	return &types.Talent{
		ID:          "talent-mia",
		Name:        "Mia",
		Description: "a barista in her thirties with short dark hair",
		ImageURLs:   []string{"https://cdn.example.com/talent/mia-1.jpg"},
	}
}

// ReferenceImages 返回 n 张指定类型的参考图
func ReferenceImages(n int, t types.ReferenceType) []types.ReferenceImage {
	refs := make([]types.ReferenceImage, n)
	for i := range refs {
		refs[i] = types.ReferenceImage{
			URL:  fmt.Sprintf("https://cdn.example.com/ref/%s-%d.jpg", t, i),
			Type: t,
		}
	}
	return refs
}
