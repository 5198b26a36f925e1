package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/vtf"
)

// testImage builds a deterministic opaque image.
func testImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 200, A: 255})
		}
	}
	return img
}

func TestWriteReadLossless(t *testing.T) {
	t.Parallel()

	img := testImage(16, 8)

	for _, ext := range []string{"png", "bmp", "tiff", "dds", "edds"} {
		ext := ext
		t.Run(ext, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "image."+ext)
			if err := WriteImage(path, img); err != nil {
				t.Fatalf("WriteImage: %v", err)
			}

			frames, err := ReadFrames(path)
			if err != nil {
				t.Fatalf("ReadFrames: %v", err)
			}
			if frames.Width != 16 || frames.Height != 8 || len(frames.Data) != 1 {
				t.Fatalf("unexpected frames %dx%d x%d", frames.Width, frames.Height, len(frames.Data))
			}
			if !bytes.Equal(frames.Data[0], img.Pix) {
				t.Fatal("pixel mismatch")
			}
		})
	}
}

func TestWriteReadJPEG(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "image.JPG")
	if err := WriteImage(path, testImage(16, 8)); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}

	frames, err := ReadFrames(path)
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if frames.Width != 16 || frames.Height != 8 || len(frames.Data[0]) != 16*8*4 {
		t.Fatalf("unexpected frames %dx%d", frames.Width, frames.Height)
	}
}

func TestReadAnimatedGIF(t *testing.T) {
	t.Parallel()

	pal := color.Palette{color.Transparent, color.NRGBA{255, 0, 0, 255}, color.NRGBA{0, 0, 255, 255}}

	first := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	for i := range first.Pix {
		first.Pix[i] = 1
	}
	// second frame only covers the top-left pixel
	second := image.NewPaletted(image.Rect(0, 0, 1, 1), pal)
	second.Pix[0] = 2

	anim := &gif.GIF{
		Image:    []*image.Paletted{first, second},
		Delay:    []int{10, 10},
		Disposal: []byte{gif.DisposalNone, gif.DisposalNone},
		Config:   image.Config{ColorModel: pal, Width: 4, Height: 4},
	}

	path := filepath.Join(t.TempDir(), "anim.gif")
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		t.Fatalf("EncodeAll: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	frames, err := ReadFrames(path)
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if frames.Width != 4 || frames.Height != 4 || len(frames.Data) != 2 {
		t.Fatalf("unexpected frames %dx%d x%d", frames.Width, frames.Height, len(frames.Data))
	}

	red := []byte{255, 0, 0, 255}
	blue := []byte{0, 0, 255, 255}
	if !bytes.Equal(frames.Data[0][:4], red) {
		t.Fatalf("frame 0 pixel 0 = %v, want red", frames.Data[0][:4])
	}
	if !bytes.Equal(frames.Data[1][:4], blue) {
		t.Fatalf("frame 1 pixel 0 = %v, want blue", frames.Data[1][:4])
	}
	if !bytes.Equal(frames.Data[1][4:8], red) {
		t.Fatalf("frame 1 pixel 1 = %v, want red from frame 0", frames.Data[1][4:8])
	}

	b, err := frames.Builder()
	if err != nil {
		t.Fatalf("Builder: %v", err)
	}
	data, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	img, err := vtf.Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.FrameCount() != 2 {
		t.Fatalf("FrameCount() = %d, want 2", img.FrameCount())
	}
}

func TestWriteGIF(t *testing.T) {
	t.Parallel()

	src := image.NewPaletted(image.Rect(0, 0, 2, 2), palette.Plan9)
	path := filepath.Join(t.TempDir(), "still.gif")
	if err := WriteImage(path, src); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}

	frames, err := ReadFrames(path)
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if len(frames.Data) != 1 || frames.Width != 2 {
		t.Fatalf("unexpected frames %dx%d x%d", frames.Width, frames.Height, len(frames.Data))
	}
}

func TestWriteFrame(t *testing.T) {
	t.Parallel()

	img := testImage(8, 8)
	data, err := vtf.NewBuilder(8, 8, img.Pix).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tex, err := vtf.Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	frame, err := tex.DecodeMain()
	if err != nil {
		t.Fatalf("DecodeMain: %v", err)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := WriteFrame(path, frame); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	frames, err := ReadFrames(path)
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if !bytes.Equal(frames.Data[0], img.Pix) {
		t.Fatal("exported frame mismatch")
	}
}

func TestUnsupportedExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "image.xyz")
	if err := WriteImage(path, testImage(1, 1)); !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("WriteImage: expected ErrUnsupportedExtension, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("WriteImage created %q", path)
	}

	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadFrames(path); !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("ReadFrames: expected ErrUnsupportedExtension, got %v", err)
	}

	if err := Encode(&bytes.Buffer{}, testImage(1, 1), "webp"); !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("Encode webp: expected ErrUnsupportedExtension, got %v", err)
	}
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := ReadFrames(filepath.Join(dir, "missing.png"))
	if !errors.Is(err, ErrIO) || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected ErrIO wrapping fs.ErrNotExist, got %v", err)
	}

	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("not a png"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadFrames(bad); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestExt(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"a/b/c.PNG":   "png",
		"tex.edds":    "edds",
		"archive.tar": "tar",
		"noext":       "",
	}
	for in, want := range tests {
		if got := Ext(in); got != want {
			t.Fatalf("Ext(%q) = %q, want %q", in, got, want)
		}
	}
}
