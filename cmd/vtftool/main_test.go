package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/woozymasta/vtf"
	"github.com/woozymasta/vtf/imageio"
)

// runTool invokes the CLI with an isolated dotenv path.
func runTool(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	full := append([]string{"-env", filepath.Join(t.TempDir(), "none.env")}, args...)
	code := run(context.Background(), full, &stdout, &stderr)

	return code, stdout.String(), stderr.String()
}

// writePNG stores a 16x16 gradient image and returns its path.
func writePNG(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 90, A: 255})
		}
	}

	path := filepath.Join(dir, "src.png")
	if err := imageio.WriteImage(path, img); err != nil {
		t.Fatalf("WriteImage: %v", err)
	}

	return path
}

func TestImportExportRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := writePNG(t, dir)
	tex := filepath.Join(dir, "out.vtf")

	if code, _, stderr := runTool(t, "import", "-nolod", src, tex); code != exitOK {
		t.Fatalf("import exit %d: %s", code, stderr)
	}

	img, err := vtf.LoadFile(tex)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if img.Width() != 16 || img.MipmapCount() != 5 || !img.Header().Flags.Has(vtf.FlagNoLOD) {
		t.Fatalf("unexpected texture: %s", img.Header())
	}

	png := filepath.Join(dir, "back.png")
	if code, _, stderr := runTool(t, "export", tex, png); code != exitOK {
		t.Fatalf("export exit %d: %s", code, stderr)
	}

	frames, err := imageio.ReadFrames(png)
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	want, err := imageio.ReadFrames(src)
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if !bytes.Equal(frames.Data[0], want.Data[0]) {
		t.Fatal("exported pixels differ from the source image")
	}
}

func TestExportLevelAndDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tex := filepath.Join(dir, "tex.vtf")
	if code, _, stderr := runTool(t, "import", writePNG(t, dir), tex); code != exitOK {
		t.Fatalf("import exit %d: %s", code, stderr)
	}

	if code, _, stderr := runTool(t, "export", "-level", "2", "-format", "bmp", tex); code != exitOK {
		t.Fatalf("export exit %d: %s", code, stderr)
	}
	frames, err := imageio.ReadFrames(filepath.Join(dir, "tex.bmp"))
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if frames.Width != 4 || frames.Height != 4 {
		t.Fatalf("level 2 exported as %dx%d, want 4x4", frames.Width, frames.Height)
	}

	if code, _, _ := runTool(t, "export", "-level", "9", tex); code != exitError {
		t.Fatalf("out of range level: exit %d, want %d", code, exitError)
	}
}

func TestExportAllFrames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	red := bytes.Repeat([]byte{255, 0, 0, 255}, 4*4)
	blue := bytes.Repeat([]byte{0, 0, 255, 255}, 4*4)
	b, err := vtf.NewBuilderFromFrames(4, 4, [][]byte{red, blue})
	if err != nil {
		t.Fatalf("NewBuilderFromFrames: %v", err)
	}
	tex := filepath.Join(dir, "anim.vtf")
	if err := b.Save(tex); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if code, _, stderr := runTool(t, "export", "-all", tex, filepath.Join(dir, "f.png")); code != exitOK {
		t.Fatalf("export exit %d: %s", code, stderr)
	}

	for i, want := range [][]byte{red, blue} {
		frames, err := imageio.ReadFrames(filepath.Join(dir, []string{"f_000.png", "f_001.png"}[i]))
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !bytes.Equal(frames.Data[0], want) {
			t.Fatalf("frame %d pixels differ", i)
		}
	}
}

func TestThumbnail(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tex := filepath.Join(dir, "tex.vtf")
	if code, _, stderr := runTool(t, "import", writePNG(t, dir), tex); code != exitOK {
		t.Fatalf("import exit %d: %s", code, stderr)
	}

	if code, _, stderr := runTool(t, "thumbnail", tex); code != exitOK {
		t.Fatalf("thumbnail exit %d: %s", code, stderr)
	}
	frames, err := imageio.ReadFrames(filepath.Join(dir, "tex_thumb.png"))
	if err != nil {
		t.Fatalf("ReadFrames: %v", err)
	}
	if frames.Width != 4 || frames.Height != 4 {
		t.Fatalf("thumbnail %dx%d, want 4x4", frames.Width, frames.Height)
	}
}

func TestInfo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tex := filepath.Join(dir, "tex.vtf")
	if code, _, stderr := runTool(t, "import", writePNG(t, dir), tex); code != exitOK {
		t.Fatalf("import exit %d: %s", code, stderr)
	}

	code, stdout, stderr := runTool(t, "info", tex)
	if code != exitOK {
		t.Fatalf("info exit %d: %s", code, stderr)
	}
	for _, want := range []string{"BGRA8888", "16x16", "7.2", "DXT1"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("info output missing %q:\n%s", want, stdout)
		}
	}

	code, stdout, _ = runTool(t, "info", "-json", tex)
	if code != exitOK {
		t.Fatalf("info -json exit %d", code)
	}
	var infos []struct {
		Width   int `json:"width"`
		Mipmaps int `json:"mipmaps"`
	}
	if err := json.Unmarshal([]byte(stdout), &infos); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if len(infos) != 1 || infos[0].Width != 16 || infos[0].Mipmaps != 5 {
		t.Fatalf("unexpected info: %+v", infos)
	}
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := filepath.Join(dir, "vtftool.yaml")
	if err := os.WriteFile(cfg, []byte("build:\n  mipmaps: false\n  clamp: true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tex := filepath.Join(dir, "tex.vtf")
	if code, _, stderr := runTool(t, "-config", cfg, "import", writePNG(t, dir), tex); code != exitOK {
		t.Fatalf("import exit %d: %s", code, stderr)
	}

	h, err := vtf.Probe(tex)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if h.MipmapCount != 1 || !h.Flags.Has(vtf.FlagClampS|vtf.FlagClampT) {
		t.Fatalf("config not applied: mips %d flags %s", h.MipmapCount, h.Flags)
	}
}

func TestExitCodes(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.vtf")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "no-command", args: nil, want: exitUsage},
		{name: "unknown-command", args: []string{"frobnicate"}, want: exitUsage},
		{name: "help", args: []string{"help"}, want: exitOK},
		{name: "info-no-args", args: []string{"info"}, want: exitUsage},
		{name: "bad-flag", args: []string{"export", "-bogus", missing}, want: exitUsage},
		{name: "bad-extension", args: []string{"export", missing, "out.xyz"}, want: exitUsage},
		{name: "missing-file", args: []string{"info", missing}, want: exitError},
		{name: "missing-config", args: []string{"-config", missing, "info", missing}, want: exitError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if code, _, _ := runTool(t, tc.args...); code != tc.want {
				t.Fatalf("exit %d, want %d", code, tc.want)
			}
		})
	}
}
