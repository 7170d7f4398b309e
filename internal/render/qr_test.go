package render_test

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoideee/catalogs/internal/render"
)

func Test_QRCode_IsSquarePNGOnModuleGrid(t *testing.T) {
	summary := "Catalog ID: AB-1234\nName: Quartz\nChemical Formula: SiO2\nHardness: 7\n" +
		"Weight (carats): 2.5\nRarity: COMMON\nOrigin Country: Brazil\nSpecimens Count: 5"

	raw, err := render.QRCode(summary)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)

	b := img.Bounds()
	assert.Equal(t, b.Dx(), b.Dy())
	assert.Zero(t, b.Dx()%render.ModulePixels)
	// Smallest symbol is 21 modules plus a 4 module quiet zone each side.
	assert.GreaterOrEqual(t, b.Dx(), (21+8)*render.ModulePixels)
}

func Test_QRCode_GrowsWithContent(t *testing.T) {
	small, err := render.QRCode("AB-1234")
	require.NoError(t, err)
	large, err := render.QRCode(strings.Repeat("Quartz SiO2 ", 40))
	require.NoError(t, err)

	a, err := png.Decode(bytes.NewReader(small))
	require.NoError(t, err)
	b, err := png.Decode(bytes.NewReader(large))
	require.NoError(t, err)

	assert.Greater(t, b.Bounds().Dx(), a.Bounds().Dx())
}

func Test_QRCode_RejectsOversizedText(t *testing.T) {
	_, err := render.QRCode(strings.Repeat("x", 8000))
	assert.Error(t, err)
}
