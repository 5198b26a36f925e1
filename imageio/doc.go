// Package imageio converts between image files on disk and the RGBA8 frame
// buffers used by the vtf package.
//
// Decoding supports PNG, JPEG, GIF (every frame, composited onto the logical
// screen), BMP, TIFF, WebP, DDS and EDDS. Encoding supports PNG, JPEG, GIF,
// BMP, TIFF, DDS and EDDS. The format is chosen by file extension.
package imageio
