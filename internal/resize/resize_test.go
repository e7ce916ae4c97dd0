package resize

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShouldFill(t *testing.T) {
	opts := DefaultOptions() // 1280x800, ratio 1.6, tolerance 15%
	tests := []struct {
		name string
		w, h int
		fill bool
	}{
		{name: "exact target ratio", w: 1280, h: 800, fill: true},
		{name: "slightly wide", w: 1700, h: 1000, fill: true},
		{name: "slightly tall", w: 1400, h: 1000, fill: true},
		{name: "too wide", w: 1920, h: 1000, fill: false},
		{name: "portrait", w: 800, h: 1280, fill: false},
		{name: "square", w: 1000, h: 1000, fill: false},
		{name: "zero size", w: 0, h: 0, fill: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.fill, shouldFill(tc.w, tc.h, opts))
		})
	}
}

func TestFitRect(t *testing.T) {
	// Portrait image inside 1280x800 lands centered with full height.
	r := fitRect(400, 800, 1280, 800)
	require.Equal(t, 800, r.Dy())
	require.Equal(t, 400, r.Dx())
	require.Equal(t, 440, r.Min.X)
	require.Equal(t, 0, r.Min.Y)

	// Very wide image spans the full width.
	r = fitRect(3200, 800, 1280, 800)
	require.Equal(t, 1280, r.Dx())
	require.Equal(t, 320, r.Dy())
	require.Equal(t, 240, r.Min.Y)
}

func TestNormalizeLetterboxBackground(t *testing.T) {
	opts := DefaultOptions()
	src := image.NewRGBA(image.Rect(0, 0, 100, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 100; x++ {
			src.Set(x, y, color.RGBA{R: 0xff, A: 0xff})
		}
	}

	out := Normalize(src, opts)
	require.Equal(t, opts.Width, out.Bounds().Dx())
	require.Equal(t, opts.Height, out.Bounds().Dy())

	// Corners are letterbox background, the center is image content.
	require.Equal(t, opts.Background, out.RGBAAt(0, 0))
	require.Equal(t, opts.Background, out.RGBAAt(opts.Width-1, opts.Height-1))
	center := out.RGBAAt(opts.Width/2, opts.Height/2)
	require.Equal(t, uint8(0xff), center.R)
}

func TestNormalizeFillCoversCanvas(t *testing.T) {
	opts := DefaultOptions()
	src := image.NewRGBA(image.Rect(0, 0, 640, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 640; x++ {
			src.Set(x, y, color.RGBA{B: 0xff, A: 0xff})
		}
	}

	out := Normalize(src, opts)
	require.Equal(t, uint8(0xff), out.RGBAAt(0, 0).B)
	require.Equal(t, uint8(0xff), out.RGBAAt(opts.Width-1, opts.Height-1).B)
}

func TestProcessFileConvertsPNG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "shot.png")

	img := image.NewRGBA(image.Rect(0, 0, 320, 200))
	f, err := os.Create(src)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	out, err := ProcessFile(src, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "shot.jpg"), out)

	_, err = os.Stat(out)
	require.NoError(t, err)
	_, err = os.Stat(src)
	require.True(t, os.IsNotExist(err), "original png should be removed")
}
