/*
Package vtf implements Valve Texture Format (VTF 7.0-7.5) container read/write.

A VTF file stores a fixed little-endian header, an optional low-resolution
thumbnail and then the mipmap chain ordered from the smallest level to the
largest. Inside one level every frame is stored contiguously, and depth
slices are nested within each frame.

The package focuses on practical workflows: probe a header, decode any
(mipmap, frame) pair from one of 27 pixel formats (including DXT1/3/5) into
RGBA, and build new uncompressed BGRA8888 textures from one or more RGBA
frames with an optional mip chain.
*/
package vtf
