package generation

import (
	"slices"

	"github.com/BaSui01/creativeflow/generation/prompt"
)

// VideoAspectRatios is the aspect ratio enumeration of the async video backend.
var VideoAspectRatios = []string{"16:9", "9:16", "1:1", "4:5"}

// Limits are the per-backend request bounds.
type Limits struct {
	MaxVariations      int
	MaxDurationSeconds int      // video only
	AspectRatios       []string // empty means unrestricted
	// RejectExcessReferences makes the validator fail when more than
	// MaxReferenceImages are supplied. Otherwise the list is truncated
	// with References at submit time.
	RejectExcessReferences bool
	MaxReferenceImages     int
	References             prompt.ReferenceLimits
}

// AllowsAspectRatio reports whether ratio is permitted.
func (l Limits) AllowsAspectRatio(ratio string) bool {
	return len(l.AspectRatios) == 0 || slices.Contains(l.AspectRatios, ratio)
}

// AsyncImageLimits 异步后端图像限制：参考图超限时截断而非拒绝.
func AsyncImageLimits() Limits {
	return Limits{
		MaxVariations: 4,
		References:    prompt.DefaultReferenceLimits(),
	}
}

// AsyncVideoLimits 异步后端视频限制.
func AsyncVideoLimits() Limits {
	return Limits{
		MaxVariations:          4,
		MaxDurationSeconds:     300,
		AspectRatios:           VideoAspectRatios,
		RejectExcessReferences: true,
		MaxReferenceImages:     5,
		References:             prompt.DefaultReferenceLimits(),
	}
}

// SyncImageLimits 同步内联后端图像限制.
func SyncImageLimits() Limits {
	return Limits{
		MaxVariations: 4,
		References:    prompt.DefaultReferenceLimits(),
	}
}
