package scene

// Side selects which triangle faces are rasterized.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Blending selects a predefined blend equation or CustomBlending.
type Blending int

const (
	NoBlending Blending = iota
	NormalBlending
	AdditiveBlending
	SubtractiveBlending
	MultiplyBlending
	CustomBlending
)

// BlendEquation and BlendFactor are used with CustomBlending. The zero value
// of each means "unset", which for the alpha variants falls back to the color
// channel's value.
type BlendEquation int

const (
	BlendEquationUnset BlendEquation = iota
	AddEquation
	SubtractEquation
	ReverseSubtractEquation
	MinEquation
	MaxEquation
)

type BlendFactor int

const (
	BlendFactorUnset BlendFactor = iota
	ZeroFactor
	OneFactor
	SrcColorFactor
	OneMinusSrcColorFactor
	SrcAlphaFactor
	OneMinusSrcAlphaFactor
	DstAlphaFactor
	OneMinusDstAlphaFactor
	DstColorFactor
	OneMinusDstColorFactor
	SrcAlphaSaturateFactor
)

// DepthFunc is the depth comparison. The zero value is LessEqualDepth.
type DepthFunc int

const (
	LessEqualDepth DepthFunc = iota
	NeverDepth
	AlwaysDepth
	LessDepth
	EqualDepth
	GreaterEqualDepth
	GreaterDepth
	NotEqualDepth
)

type ToneMapping int

const (
	NoToneMapping ToneMapping = iota
	LinearToneMapping
	ReinhardToneMapping
	Uncharted2ToneMapping
	CineonToneMapping
)

// Encoding is the color space of a texture or of the render output.
type Encoding int

const (
	LinearEncoding Encoding = iota
	SRGBEncoding
	GammaEncoding
	RGBEEncoding
)

type ShadowMapType int

const (
	BasicShadowMap ShadowMapType = iota
	PCFShadowMap
	PCFSoftShadowMap
)

type DepthPacking int

const (
	BasicDepthPacking DepthPacking = iota
	RGBADepthPacking
)

// DrawMode is the primitive topology of a mesh.
type DrawMode int

const (
	TrianglesDrawMode DrawMode = iota
	TriangleStripDrawMode
	TriangleFanDrawMode
)

type Wrapping int

const (
	ClampToEdgeWrapping Wrapping = iota
	RepeatWrapping
	MirroredRepeatWrapping
)

type Filter int

const (
	LinearFilter Filter = iota
	NearestFilter
	NearestMipmapNearestFilter
	NearestMipmapLinearFilter
	LinearMipmapNearestFilter
	LinearMipmapLinearFilter
)

// Format is the pixel layout of texture data.
type Format int

const (
	RGBAFormat Format = iota
	RGBFormat
	AlphaFormat
	LuminanceFormat
	DepthFormat
	DepthStencilFormat
	RGBS3TCDXT1Format
	RGBAS3TCDXT5Format
)

// IsCompressed reports whether the format needs a compressed-texture extension.
func (f Format) IsCompressed() bool {
	return f == RGBS3TCDXT1Format || f == RGBAS3TCDXT5Format
}

type DataType int

const (
	UnsignedByteType DataType = iota
	FloatType
	HalfFloatType
	UnsignedShortType
	UnsignedIntType
)
