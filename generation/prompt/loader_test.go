package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customArchetypes = `
archetypes:
  - name: unboxing
    content_type: image
    base:
      subject: "Hands opening a {brand_name} box"
      lighting: "Overhead daylight"
    product:
      subject: "Hands lifting {product_name} out of a {brand_name} box"
  - name: social_post
    content_type: image
    base:
      subject: "A minimal tile for {brand_name}"
`

func TestLoadArchetypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archetypes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(customArchetypes), 0o644))

	archetypes, err := LoadArchetypes(path)
	require.NoError(t, err)
	require.Len(t, archetypes, 2)
	assert.Equal(t, "unboxing", archetypes[0].Name)
	require.NotNil(t, archetypes[0].Product)
	assert.Nil(t, archetypes[0].Talent)

	a := NewAssembler(Config{Extra: archetypes})
	assert.Contains(t, a.Archetypes(), "unboxing")

	res, err := a.Assemble(Input{
		Archetype:   "unboxing",
		Variables:   Variables{VarBrandName: "Aurora", VarProductName: "Nitro"},
		SkipQuality: true,
	})
	require.NoError(t, err)
	assert.Equal(t, VariantProduct, res.Variant)
	assert.Contains(t, res.Prompt, "Hands lifting Nitro out of a Aurora box")

	res, err = a.Assemble(Input{Archetype: "social_post", Variables: Variables{VarBrandName: "Aurora"}, SkipQuality: true})
	require.NoError(t, err)
	assert.Equal(t, "A minimal tile for Aurora", res.Prompt)
}

func TestParseArchetypes_Errors(t *testing.T) {
	tests := map[string]string{
		"missing name":    "archetypes:\n  - content_type: image\n    base: {subject: x}\n",
		"bad type":        "archetypes:\n  - name: a\n    content_type: audio\n    base: {subject: x}\n",
		"missing subject": "archetypes:\n  - name: a\n    content_type: video\n",
		"duplicate":       "archetypes:\n  - {name: a, content_type: image, base: {subject: x}}\n  - {name: a, content_type: image, base: {subject: y}}\n",
		"not yaml":        "archetypes: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseArchetypes([]byte(doc))
			assert.Error(t, err)
		})
	}

	_, err := LoadArchetypes(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
