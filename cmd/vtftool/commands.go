package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/woozymasta/vtf"
	"github.com/woozymasta/vtf/imageio"
	"github.com/woozymasta/vtf/internal/preview"
)

var (
	labelColor = color.New(color.FgCyan, color.Bold)
	titleColor = color.New(color.FgGreen, color.Bold)
	mutedColor = color.New(color.FgHiBlack)
)

func (e *env) info(args []string) error {
	fs := e.flagSet("info")
	asJSON := fs.Bool("json", false, "print JSON instead of text")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: at least one .vtf file required", errUsage)
	}

	infos := make([]*preview.Info, 0, fs.NArg())
	for _, path := range fs.Args() {
		img, err := vtf.LoadFile(path)
		if err != nil {
			return err
		}
		infos = append(infos, preview.NewInfo(path, img))
	}

	if *asJSON {
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	for i, info := range infos {
		if i > 0 {
			fmt.Fprintln(e.stdout)
		}
		e.printInfo(info)
	}

	return nil
}

func (e *env) printInfo(info *preview.Info) {
	w := e.stdout
	field := func(name string, value any) {
		labelColor.Fprintf(w, "%-12s", name+":")
		fmt.Fprintf(w, " %v\n", value)
	}

	titleColor.Fprintln(w, info.Path)
	field("Version", info.Version)
	field("Size", fmt.Sprintf("%dx%d", info.Width, info.Height))
	if info.Depth > 1 {
		field("Depth", info.Depth)
	}
	field("Format", info.Format)
	field("Flags", info.Flags)
	field("Mipmaps", info.Mipmaps)
	field("Frames", fmt.Sprintf("%d (first %d)", info.Frames, info.FirstFrame))
	field("Has Alpha", info.HasAlpha)
	if info.Thumbnail != nil {
		field("Thumbnail", fmt.Sprintf("%s %dx%d", info.Thumbnail.Format, info.Thumbnail.Width, info.Thumbnail.Height))
	}
	for _, level := range info.Levels {
		mutedColor.Fprintf(w, "  mip %-2d %5dx%-5d %d bytes\n", level.Level, level.Width, level.Height, level.Bytes)
	}
}

func (e *env) export(args []string) error {
	fs := e.flagSet("export")
	level := fs.Int("level", 0, "mipmap level")
	frame := fs.Int("frame", -1, "frame index (-1 for the first frame)")
	slice := fs.Int("slice", 0, "depth slice of volume textures")
	all := fs.Bool("all", false, "export every frame as <out>_NNN.<ext>")
	format := fs.String("format", e.cfg.Export.Format, "output extension when no output path is given")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return fmt.Errorf("%w: expected <in.vtf> [out.ext]", errUsage)
	}

	in := fs.Arg(0)
	out := fs.Arg(1)
	if out == "" {
		out = replaceExt(in, strings.TrimPrefix(*format, "."))
	}
	if !imageio.CanEncode(imageio.Ext(out)) {
		return fmt.Errorf("%w: %w: %q", errUsage, imageio.ErrUnsupportedExtension, out)
	}

	img, err := vtf.LoadFile(in)
	if err != nil {
		return err
	}

	if *all {
		frames, err := img.DecodeAllFrames(*level)
		if err != nil {
			return err
		}
		ext := filepath.Ext(out)
		base := strings.TrimSuffix(out, ext)
		for _, f := range frames {
			path := fmt.Sprintf("%s_%03d%s", base, f.Frame, ext)
			if err := imageio.WriteFrame(path, f); err != nil {
				return err
			}
			e.logger.Info("frame exported", zap.String("path", path), zap.Int("frame", f.Frame))
		}
		return nil
	}

	if *frame < 0 {
		*frame = int(img.Header().FirstFrame)
	}
	decoded, err := img.DecodeSlice(*level, *frame, *slice)
	if err != nil {
		return err
	}
	if err := imageio.WriteFrame(out, decoded); err != nil {
		return err
	}

	e.logger.Info("texture exported",
		zap.String("path", out),
		zap.Int("level", decoded.MipmapLevel),
		zap.Int("frame", decoded.Frame),
		zap.Int("width", decoded.Width),
		zap.Int("height", decoded.Height),
	)

	return nil
}

func (e *env) importImage(args []string) error {
	build := e.cfg.Build
	fs := e.flagSet("import")
	mipmaps := fs.Bool("mipmaps", build.Mipmaps, "generate the mipmap chain")
	normal := fs.Bool("normal", build.NormalMap, "mark the texture as a normal map")
	clamp := fs.Bool("clamp", build.Clamp, "clamp S and T coordinates")
	noLOD := fs.Bool("nolod", build.NoLOD, "exclude from LOD reduction")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return fmt.Errorf("%w: expected <in.image> [out.vtf]", errUsage)
	}

	in := fs.Arg(0)
	out := fs.Arg(1)
	if out == "" {
		out = replaceExt(in, "vtf")
	}

	frames, err := imageio.ReadFrames(in)
	if err != nil {
		return err
	}
	builder, err := frames.Builder()
	if err != nil {
		return err
	}

	err = builder.
		Mipmaps(*mipmaps).
		NormalMap(*normal).
		Clamp(*clamp).
		NoLOD(*noLOD).
		Save(out)
	if err != nil {
		return err
	}

	e.logger.Info("texture built",
		zap.String("path", out),
		zap.Int("width", frames.Width),
		zap.Int("height", frames.Height),
		zap.Int("frames", len(frames.Data)),
	)

	return nil
}

func (e *env) thumbnail(args []string) error {
	fs := e.flagSet("thumbnail")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return fmt.Errorf("%w: expected <in.vtf> [out.ext]", errUsage)
	}

	in := fs.Arg(0)
	out := fs.Arg(1)
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + "_thumb.png"
	}

	img, err := vtf.LoadFile(in)
	if err != nil {
		return err
	}
	thumb, err := img.DecodeThumbnail()
	if err != nil {
		return err
	}

	return imageio.WriteFrame(out, thumb)
}

func (e *env) serve(ctx context.Context, args []string) error {
	server := e.cfg.Server
	fs := e.flagSet("serve")
	addr := fs.String("addr", server.Addr, "listen address")
	root := fs.String("root", server.Root, "directory served")
	if err := parse(fs, args); err != nil {
		return err
	}

	return preview.New(*root, e.logger).Run(ctx, *addr, server.ReadTimeout, server.WriteTimeout)
}

// replaceExt swaps the extension of path for ext.
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}
