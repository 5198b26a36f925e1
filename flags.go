package vtf

import "strings"

// Flags is the VTF texture flag bitset.
type Flags uint32

// Texture flags.
const (
	FlagPointSample       Flags = 0x00000001
	FlagTrilinear         Flags = 0x00000002
	FlagClampS            Flags = 0x00000004
	FlagClampT            Flags = 0x00000008
	FlagAnisotropic       Flags = 0x00000010
	FlagHintDXT5          Flags = 0x00000020
	FlagPWLCorrected      Flags = 0x00000040
	FlagNormal            Flags = 0x00000080
	FlagNoMip             Flags = 0x00000100
	FlagNoLOD             Flags = 0x00000200
	FlagAllMips           Flags = 0x00000400
	FlagProcedural        Flags = 0x00000800
	FlagOneBitAlpha       Flags = 0x00001000
	FlagEightBitAlpha     Flags = 0x00002000
	FlagEnvMap            Flags = 0x00004000
	FlagRenderTarget      Flags = 0x00008000
	FlagDepthRenderTarget Flags = 0x00010000
	FlagNoDebugOverride   Flags = 0x00020000
	FlagSingleCopy        Flags = 0x00040000
	FlagPreSRGB           Flags = 0x00080000
	FlagNoDepthBuffer     Flags = 0x00800000
	FlagClampU            Flags = 0x02000000
	FlagVertexTexture     Flags = 0x04000000
	FlagSSBump            Flags = 0x08000000
	FlagBorder            Flags = 0x20000000
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagPointSample, "POINTSAMPLE"},
	{FlagTrilinear, "TRILINEAR"},
	{FlagClampS, "CLAMPS"},
	{FlagClampT, "CLAMPT"},
	{FlagAnisotropic, "ANISOTROPIC"},
	{FlagHintDXT5, "HINT_DXT5"},
	{FlagPWLCorrected, "PWL_CORRECTED"},
	{FlagNormal, "NORMAL"},
	{FlagNoMip, "NOMIP"},
	{FlagNoLOD, "NOLOD"},
	{FlagAllMips, "ALL_MIPS"},
	{FlagProcedural, "PROCEDURAL"},
	{FlagOneBitAlpha, "ONEBITALPHA"},
	{FlagEightBitAlpha, "EIGHTBITALPHA"},
	{FlagEnvMap, "ENVMAP"},
	{FlagRenderTarget, "RENDERTARGET"},
	{FlagDepthRenderTarget, "DEPTHRENDERTARGET"},
	{FlagNoDebugOverride, "NODEBUGOVERRIDE"},
	{FlagSingleCopy, "SINGLECOPY"},
	{FlagPreSRGB, "PRE_SRGB"},
	{FlagNoDepthBuffer, "NODEPTHBUFFER"},
	{FlagClampU, "CLAMPU"},
	{FlagVertexTexture, "VERTEXTEXTURE"},
	{FlagSSBump, "SSBUMP"},
	{FlagBorder, "BORDER"},
}

// Has reports whether every bit of mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// String lists the names of set flags joined by "|"; unnamed bits are
// dropped.
func (f Flags) String() string {
	if f == 0 {
		return "0"
	}

	names := make([]string, 0, 4)
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "0"
	}

	return strings.Join(names, "|")
}
