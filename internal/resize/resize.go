package resize

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// Options controls screenshot normalization: every image is re-encoded as a
// JPEG on a fixed canvas, filled when its aspect ratio is close enough to the
// target and letterboxed otherwise.
type Options struct {
	Width      int
	Height     int
	Quality    int
	Tolerance  float64
	Background color.RGBA
}

func DefaultOptions() Options {
	return Options{
		Width:      1280,
		Height:     800,
		Quality:    90,
		Tolerance:  0.15,
		Background: color.RGBA{R: 0xf8, G: 0xfa, B: 0xfc, A: 0xff},
	}
}

// ProcessDir normalizes every png/jpeg in dir in place. Individual failures
// are reported but do not stop the batch.
func ProcessDir(dir string, opts Options) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	var failed []string
	for _, entry := range entries {
		if entry.IsDir() || !isImageName(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		out, err := ProcessFile(path, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error processing %s: %v\n", entry.Name(), err)
			failed = append(failed, entry.Name())
			continue
		}
		fmt.Printf("processed %s -> %s\n", entry.Name(), filepath.Base(out))
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d image(s) failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

// ProcessFile normalizes one image and returns the output path. The original
// file is removed when re-encoding changed its extension.
func ProcessFile(path string, opts Options) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	src, _, err := image.Decode(file)
	file.Close()
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	normalized := Normalize(src, opts)

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".jpg"
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	if err := jpeg.Encode(out, normalized, &jpeg.Options{Quality: opts.Quality}); err != nil {
		out.Close()
		return "", fmt.Errorf("encode: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if outPath != path {
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("remove original: %w", err)
		}
	}
	return outPath, nil
}

// Normalize renders src onto the target canvas. Transparency is flattened
// onto white before the background letterbox is applied.
func Normalize(src image.Image, opts Options) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	bounds := src.Bounds()

	if shouldFill(bounds.Dx(), bounds.Dy(), opts) {
		draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), src, bounds, draw.Over, nil)
		return canvas
	}

	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	target := fitRect(bounds.Dx(), bounds.Dy(), opts.Width, opts.Height)
	draw.Draw(canvas, target, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(canvas, target, src, bounds, draw.Over, nil)
	return canvas
}

// shouldFill reports whether the image aspect ratio is within tolerance of
// the target, in which case it is stretched to cover the whole canvas.
func shouldFill(w, h int, opts Options) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	targetRatio := float64(opts.Width) / float64(opts.Height)
	imgRatio := float64(w) / float64(h)
	return imgRatio > (1-opts.Tolerance)*targetRatio && imgRatio < (1+opts.Tolerance)*targetRatio
}

// fitRect scales (w, h) to fit inside (tw, th) preserving aspect ratio and
// centers the result.
func fitRect(w, h, tw, th int) image.Rectangle {
	scale := float64(tw) / float64(w)
	if s := float64(th) / float64(h); s < scale {
		scale = s
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	x := (tw - nw) / 2
	y := (th - nh) / 2
	return image.Rect(x, y, x+nw, y+nh)
}

func isImageName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}
