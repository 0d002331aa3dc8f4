package prompt

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"pgregory.net/rapid"

	"github.com/BaSui01/creativeflow/types"
)

// Feature: prompt-assembly, Property 1: reference image caps
// organizeReferenceImages never exceeds 14 total, 6 object, 5 human.
func TestProperty_ReferenceImageCaps(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	refTypes := []types.ReferenceType{types.RefProduct, types.RefTalent, types.RefBrandLogo, types.RefStyleReference}
	limits := DefaultReferenceLimits()

	properties.Property("bucket and total caps hold for any input", prop.ForAll(
		func(kinds []int) bool {
			in := make([]types.ReferenceImage, len(kinds))
			for i, k := range kinds {
				in[i] = types.ReferenceImage{URL: string(rune('A' + i%26)), Type: refTypes[k]}
			}
			out := OrganizeReferenceImages(in, limits)

			objects, humans := 0, 0
			for _, r := range out {
				if r.Type.IsHuman() {
					humans++
				} else {
					objects++
				}
			}
			return len(out) <= limits.Total && objects <= limits.Object && humans <= limits.Human
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.Property("objects always precede humans", prop.ForAll(
		func(kinds []int) bool {
			in := make([]types.ReferenceImage, len(kinds))
			for i, k := range kinds {
				in[i] = types.ReferenceImage{URL: "u", Type: refTypes[k]}
			}
			seenHuman := false
			for _, r := range OrganizeReferenceImages(in, limits) {
				if r.Type.IsHuman() {
					seenHuman = true
				} else if seenHuman {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 3)),
	))

	properties.TestingRun(t)
}

// Feature: prompt-assembly, Property 2: variant selection is a pure function of field presence
func TestProperty_VariantSelection(t *testing.T) {
	a := NewAssembler(DefaultConfig())

	rapid.Check(t, func(rt *rapid.T) {
		archetype := rapid.SampledFrom(a.Archetypes()).Draw(rt, "archetype")
		hasTalent := rapid.Bool().Draw(rt, "hasTalent")
		hasProduct := rapid.Bool().Draw(rt, "hasProduct")

		vars := Variables{VarBrandName: "Brand"}
		if hasTalent {
			vars[VarTalentDescription] = rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "talent")
		}
		if hasProduct {
			vars[VarProductName] = rapid.StringMatching(`[A-Z][a-z]{1,10}`).Draw(rt, "product")
		}

		res, err := a.Assemble(Input{Archetype: archetype, Variables: vars})
		if err != nil {
			rt.Fatalf("assemble: %v", err)
		}
		arch, _ := a.Archetype(archetype)

		var want Variant
		switch {
		case hasTalent && arch.Talent != nil:
			want = VariantTalent
		case hasProduct && arch.Product != nil:
			want = VariantProduct
		default:
			want = VariantBase
		}
		if res.Variant != want {
			rt.Fatalf("variant = %s, want %s", res.Variant, want)
		}

		again, _ := a.Assemble(Input{Archetype: archetype, Variables: vars})
		if again.Prompt != res.Prompt || again.NegativePrompt != res.NegativePrompt {
			rt.Fatalf("assembly is not deterministic")
		}
	})
}

// Feature: prompt-assembly, Property 3: substitution round trip
func TestProperty_SubstitutionRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 6).Draw(rt, "n")
		vars := Variables{}
		var tmpl strings.Builder
		for i := 0; i < n; i++ {
			key := rapid.StringMatching(`[a-z]{1,6}_[a-z]{1,6}`).Draw(rt, "key")
			val := rapid.StringMatching(`[A-Za-z0-9]{1,10}`).Draw(rt, "val")
			vars[key] = val
			tmpl.WriteString("word {" + key + "} ")
		}
		missing := rapid.Bool().Draw(rt, "missing")
		if missing {
			tmpl.WriteString("{zz_never_set}")
		}

		out := Substitute(tmpl.String(), vars)
		if strings.ContainsAny(out, "{}") {
			rt.Fatalf("placeholder braces left in %q", out)
		}
		for _, v := range vars {
			if !strings.Contains(out, v) {
				rt.Fatalf("value %q missing from %q", v, out)
			}
		}
		if strings.Contains(out, "zz_never_set") {
			rt.Fatalf("unresolved placeholder rendered literally: %q", out)
		}
	})
}
