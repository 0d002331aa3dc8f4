package creativeflow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/creativeflow"
	"github.com/BaSui01/creativeflow/testutil"
)

const testCatalog = `
brands:
  - id: brand-aurora
    name: Aurora Coffee
    logo_url: https://cdn.example.com/aurora/logo.png
    colors: ["#1B1B1B", "#F2C94C"]
products:
  - id: prod-coldbrew
    brand_id: brand-aurora
    name: Nitro Cold Brew
    image_urls:
      - https://cdn.example.com/aurora/coldbrew-front.png
talents:
  - id: talent-mia
    name: Mia
    description: barista in her late twenties
    image_urls: [https://cdn.example.com/talent/mia.png]
`

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))

	catalog, err := creativeflow.LoadCatalog(path)
	require.NoError(t, err)
	ctx := testutil.TestContext(t)

	brand, err := catalog.Brand(ctx, "brand-aurora")
	require.NoError(t, err)
	assert.Equal(t, "Aurora Coffee", brand.Name)
	assert.Equal(t, "https://cdn.example.com/aurora/logo.png", brand.LogoURL)
	assert.Len(t, brand.Colors, 2)

	product, err := catalog.Product(ctx, "prod-coldbrew")
	require.NoError(t, err)
	assert.Equal(t, "brand-aurora", product.BrandID)
	assert.Len(t, product.ImageURLs, 1)

	talent, err := catalog.Talent(ctx, "talent-mia")
	require.NoError(t, err)
	assert.Equal(t, "barista in her late twenties", talent.Description)

	_, err = creativeflow.LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCatalog_Lookups(t *testing.T) {
	catalog, err := creativeflow.ParseCatalog([]byte(testCatalog))
	require.NoError(t, err)
	ctx := testutil.TestContext(t)

	_, err = catalog.Brand(ctx, "brand-nope")
	assert.ErrorIs(t, err, creativeflow.ErrUnknownEntity)
	_, err = catalog.Talent(ctx, "")
	assert.ErrorIs(t, err, creativeflow.ErrUnknownEntity)

	// 返回副本，调用方修改不影响目录
	brand, err := catalog.Brand(ctx, "brand-aurora")
	require.NoError(t, err)
	brand.Name = "changed"
	again, err := catalog.Brand(ctx, "brand-aurora")
	require.NoError(t, err)
	assert.Equal(t, "Aurora Coffee", again.Name)

	_, err = catalog.Product(testutil.CancelledContext(), "prod-coldbrew")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := map[string]string{
		"not yaml":         "brands: [",
		"brand without id": "brands:\n  - name: x\n",
		"duplicate brand":  "brands:\n  - {id: a, name: x}\n  - {id: a, name: y}\n",
		"orphan product":   "brands:\n  - {id: a, name: x}\nproducts:\n  - {id: p, brand_id: b, name: z}\n",
		"duplicate talent": "talents:\n  - {id: t}\n  - {id: t}\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := creativeflow.ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}
