package preview

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/woozymasta/vtf"
	"github.com/woozymasta/vtf/imageio"
)

// Info describes one texture.
type Info struct {
	Path       string      `json:"path"`
	Size       int         `json:"size"`
	Version    string      `json:"version"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Depth      int         `json:"depth"`
	Format     string      `json:"format"`
	Flags      string      `json:"flags"`
	Mipmaps    int         `json:"mipmaps"`
	Frames     int         `json:"frames"`
	FirstFrame int         `json:"first_frame"`
	HasAlpha   bool        `json:"has_alpha"`
	Animated   bool        `json:"animated"`
	EnvMap     bool        `json:"env_map"`
	NormalMap  bool        `json:"normal_map"`
	Thumbnail  *Thumbnail  `json:"thumbnail,omitempty"`
	Levels     []LevelInfo `json:"levels"`
}

// Thumbnail describes the low-resolution preview.
type Thumbnail struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// LevelInfo describes one mip level.
type LevelInfo struct {
	Level  int `json:"level"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Bytes  int `json:"bytes"`
}

// NewInfo summarises a loaded texture.
func NewInfo(name string, img *vtf.Image) *Info {
	h := img.Header()
	info := &Info{
		Path:       name,
		Size:       len(img.RawData()),
		Version:    h.Version.String(),
		Width:      int(h.Width),
		Height:     int(h.Height),
		Depth:      int(h.Depth),
		Format:     h.HighResFormat.String(),
		Flags:      h.Flags.String(),
		Mipmaps:    int(h.MipmapCount),
		Frames:     int(h.Frames),
		FirstFrame: int(h.FirstFrame),
		HasAlpha:   h.HasAlpha(),
		Animated:   h.IsAnimated(),
		EnvMap:     h.IsEnvMap(),
		NormalMap:  h.IsNormalMap(),
		Levels:     make([]LevelInfo, 0, h.MipmapCount),
	}
	if h.LowResWidth > 0 && h.LowResHeight > 0 {
		info.Thumbnail = &Thumbnail{
			Format: h.LowResFormat.String(),
			Width:  int(h.LowResWidth),
			Height: int(h.LowResHeight),
		}
	}
	for level := 0; level < int(h.MipmapCount); level++ {
		w, ht := h.MipmapSize(level)
		info.Levels = append(info.Levels, LevelInfo{Level: level, Width: w, Height: ht, Bytes: h.MipmapDataSize(level)})
	}

	return info
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	var files []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".vtf") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	sort.Strings(files)
	if files == nil {
		files = []string{}
	}
	s.writeJSON(w, files)
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["path"]
	img, err := vtf.LoadFile(s.resolve(name))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, NewInfo(name, img))
}

func (s *Server) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	img, err := vtf.LoadFile(s.resolve(mux.Vars(r)["path"]))
	if err != nil {
		s.writeError(w, err)
		return
	}

	frame, err := img.DecodeThumbnail()
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writePNG(w, frame)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	level, err := intParam(query.Get("level"), 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	frameIndex, err := intParam(query.Get("frame"), -1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	slice, err := intParam(query.Get("slice"), 0)
	if err != nil {
		s.writeError(w, err)
		return
	}

	img, err := vtf.LoadFile(s.resolve(mux.Vars(r)["path"]))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if frameIndex < 0 {
		frameIndex = int(img.Header().FirstFrame)
	}

	frame, err := img.DecodeSlice(level, frameIndex, slice)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writePNG(w, frame)
}

// errBadParam marks malformed query parameters.
var errBadParam = errors.New("bad query parameter")

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadParam, v)
	}

	return n, nil
}

func (s *Server) writePNG(w http.ResponseWriter, frame *vtf.DecodedFrame) {
	w.Header().Set("Content-Type", "image/png")
	if err := imageio.Encode(w, frame.NRGBA(), "png"); err != nil {
		s.logger.Warn("write png", zap.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write json", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, errBadParam),
		errors.Is(err, vtf.ErrInvalidMipmap),
		errors.Is(err, vtf.ErrInvalidFrame),
		errors.Is(err, vtf.ErrInvalidSlice):
		return http.StatusBadRequest
	case errors.Is(err, vtf.ErrInvalidSignature),
		errors.Is(err, vtf.ErrUnsupportedVersion),
		errors.Is(err, vtf.ErrInvalidData),
		errors.Is(err, vtf.ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
