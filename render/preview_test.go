package render_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/soypat/isothresh/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePNG(t *testing.T) {
	view := render.DefaultView
	view.Width, view.Height = 64, 48
	var b bytes.Buffer
	require.NoError(t, render.WritePNG(&b, view, tetraSurface, nil))
	img, err := png.Decode(&b)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	_, err = render.Preview(view)
	assert.Error(t, err)
	view.Width = 0
	_, err = render.Preview(view, tetraSurface)
	assert.Error(t, err)
}

func TestWriteHistogram(t *testing.T) {
	values := make([]float64, 200)
	for i := range values {
		values[i] = float64(i%17) / 16
	}
	var b bytes.Buffer
	err := render.WriteHistogram(&b, render.Histogram{Title: "r2", Bins: 8, Marks: []float64{0.25, 0.75}}, values)
	require.NoError(t, err)
	_, err = png.Decode(&b)
	require.NoError(t, err)

	assert.Error(t, render.WriteHistogram(&b, render.Histogram{}, nil))
}
