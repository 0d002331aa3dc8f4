package types

// Brand 是生成请求所引用的品牌实体（由外部 CRUD 服务持有）.
type Brand struct {
	ID                 string   `json:"id" yaml:"id"`
	Name               string   `json:"name" yaml:"name"`
	Description        string   `json:"description,omitempty" yaml:"description"`
	Voice              string   `json:"voice,omitempty" yaml:"voice"`
	Industry           string   `json:"industry,omitempty" yaml:"industry"`
	Colors             []string `json:"colors,omitempty" yaml:"colors"`
	LogoURL            string   `json:"logo_url,omitempty" yaml:"logo_url"`
	StyleReferenceURLs []string `json:"style_reference_urls,omitempty" yaml:"style_reference_urls"`
}

// Product 是品牌下的产品实体.
type Product struct {
	ID          string   `json:"id" yaml:"id"`
	BrandID     string   `json:"brand_id" yaml:"brand_id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	Category    string   `json:"category,omitempty" yaml:"category"`
	Features    []string `json:"features,omitempty" yaml:"features"`
	ImageURLs   []string `json:"image_urls,omitempty" yaml:"image_urls"`
}

// Talent 是出镜模特/代言人实体.
type Talent struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description"`
	ImageURLs   []string `json:"image_urls,omitempty" yaml:"image_urls"`
}
