package prompt

import "github.com/BaSui01/creativeflow/types"

// ReferenceLimits caps the reference images sent to a model.
type ReferenceLimits struct {
	Total  int `json:"total" yaml:"total"`
	Object int `json:"object" yaml:"object"`
	Human  int `json:"human" yaml:"human"`
}

// DefaultReferenceLimits 返回默认参考图上限（14 / 6 / 5）.
func DefaultReferenceLimits() ReferenceLimits {
	return ReferenceLimits{Total: 14, Object: 6, Human: 5}
}

// OrganizeReferenceImages splits images into the object bucket (product, brand_logo,
// style_reference) and the human bucket (talent), truncates each bucket, concatenates
// object then human and truncates the result to the total cap. Order within a bucket
// follows the input. Unknown types are dropped.
func OrganizeReferenceImages(images []types.ReferenceImage, limits ReferenceLimits) []types.ReferenceImage {
	var objects, humans []types.ReferenceImage
	for _, img := range images {
		switch {
		case !img.Type.Valid():
			continue
		case img.Type.IsHuman():
			humans = append(humans, img)
		default:
			objects = append(objects, img)
		}
	}
	objects = truncate(objects, limits.Object)
	humans = truncate(humans, limits.Human)

	out := make([]types.ReferenceImage, 0, len(objects)+len(humans))
	out = append(out, objects...)
	out = append(out, humans...)
	return truncate(out, limits.Total)
}

func truncate(images []types.ReferenceImage, limit int) []types.ReferenceImage {
	if limit < 0 {
		limit = 0
	}
	if len(images) > limit {
		return images[:limit]
	}
	return images
}
