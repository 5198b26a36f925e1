/*
Package dds moves textures between VTF tooling and DirectDraw Surface files.

Plain DDS files are read by decoding the largest mip level and written as a
magic, a header and the mip chain from largest to smallest.

EDDS (Enfusion DDS) stores the same header followed by a block table and one
block body per mip level, smallest first. Blocks are either stored verbatim
(COPY) or LZ4 chunk streams sharing a rolling 64 KiB dictionary (LZ4).
*/
package dds
