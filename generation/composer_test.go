package generation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/creativeflow/generation"
	"github.com/BaSui01/creativeflow/generation/prompt"
	"github.com/BaSui01/creativeflow/testutil"
	"github.com/BaSui01/creativeflow/testutil/fixtures"
	"github.com/BaSui01/creativeflow/testutil/mocks"
	"github.com/BaSui01/creativeflow/types"
)

func newComposer() (*generation.Composer, *mocks.MockEntityProvider) {
	entities := mocks.NewMockEntityProvider().
		WithBrand(fixtures.Brand()).
		WithProduct(fixtures.Product()).
		WithTalent(fixtures.Talent())
	return generation.NewComposer(entities, nil), entities
}

func TestComposer_ComposeImageWithProduct(t *testing.T) {
	c, entities := newComposer()

	req, res, err := c.ComposeImage(testutil.TestContext(t), generation.Brief{
		BrandID:       "brand-aurora",
		ProductID:     "prod-coldbrew",
		Style:         types.StyleBold,
		OutputFormats: []types.OutputFormat{types.FormatSquare},
	})
	require.NoError(t, err)

	assert.Equal(t, prompt.ArchetypeProductHero, res.Archetype)
	assert.Equal(t, prompt.VariantProduct, res.Variant)
	assert.Contains(t, req.Prompt, "Nitro Cold Brew")
	assert.NotContains(t, req.Prompt, "{")
	assert.Equal(t, res.NegativePrompt, req.NegativePrompt)
	assert.Equal(t, types.StyleBold, req.StylePreset)
	assert.Equal(t, []string{"brand:brand-aurora", "product:prod-coldbrew"}, entities.Calls())

	require.NotEmpty(t, req.ReferenceImages)
	assert.Equal(t, types.RefProduct, req.ReferenceImages[0].Type)
	assert.NoError(t, generation.ValidateImage(req, generation.AsyncImageLimits()))
}

func TestComposer_ComposeImageDefaultsToSocialPost(t *testing.T) {
	c, _ := newComposer()
	_, res, err := c.ComposeImage(testutil.TestContext(t), generation.Brief{
		BrandID:      "brand-aurora",
		TalentID:     "talent-mia",
		CustomPrompt: "golden hour {not_a_var}",
	})
	require.NoError(t, err)
	assert.Equal(t, prompt.ArchetypeSocialPost, res.Archetype)
	assert.Equal(t, prompt.VariantTalent, res.Variant)
	assert.True(t, strings.Contains(res.Prompt, "golden hour {not_a_var}"))
}

func TestComposer_ComposeVideo(t *testing.T) {
	c, _ := newComposer()
	req, res, err := c.ComposeVideo(testutil.TestContext(t), generation.Brief{
		BrandID:         "brand-aurora",
		ProductID:       "prod-coldbrew",
		DurationSeconds: 20,
		AspectRatio:     "9:16",
		ExtraReferences: fixtures.ReferenceImages(2, types.RefStyleReference),
	})
	require.NoError(t, err)
	assert.Equal(t, prompt.ArchetypeVideoSpot, res.Archetype)
	assert.Equal(t, 20, req.DurationSeconds)
	assert.Equal(t, "9:16", req.AspectRatio)
	assert.LessOrEqual(t, len(req.ReferenceImages), 14)
}

func TestComposer_Errors(t *testing.T) {
	c, _ := newComposer()
	ctx := testutil.TestContext(t)

	_, _, err := c.ComposeImage(ctx, generation.Brief{})
	testutil.AssertErrorCode(t, err, types.ErrValidation)

	_, _, err = c.ComposeImage(ctx, generation.Brief{BrandID: "missing"})
	assert.ErrorIs(t, err, mocks.ErrEntityNotFound)

	_, _, err = c.ComposeImage(ctx, generation.Brief{BrandID: "brand-aurora", Archetype: "nope"})
	e := testutil.AssertErrorCode(t, err, types.ErrValidation)
	assert.Equal(t, "archetype", e.Field)

	boom := errors.New("db down")
	failing := generation.NewComposer(mocks.NewMockEntityProvider().WithError(boom), nil)
	_, _, err = failing.ComposeVideo(ctx, generation.Brief{BrandID: "brand-aurora"})
	assert.ErrorIs(t, err, boom)
}
