package gpu

// Enum values match the OpenGL ES 2.0 / WebGL numbering so backends can
// pass them through unchanged.
const (
	NONE Enum = 0
	ZERO Enum = 0
	ONE  Enum = 1

	// Primitive modes
	POINTS         Enum = 0x0000
	LINES          Enum = 0x0001
	LINE_LOOP      Enum = 0x0002
	LINE_STRIP     Enum = 0x0003
	TRIANGLES      Enum = 0x0004
	TRIANGLE_STRIP Enum = 0x0005
	TRIANGLE_FAN   Enum = 0x0006

	// Clear mask bits
	DEPTH_BUFFER_BIT   Enum = 0x00000100
	STENCIL_BUFFER_BIT Enum = 0x00000400
	COLOR_BUFFER_BIT   Enum = 0x00004000

	// Blending
	SRC_COLOR             Enum = 0x0300
	ONE_MINUS_SRC_COLOR   Enum = 0x0301
	SRC_ALPHA             Enum = 0x0302
	ONE_MINUS_SRC_ALPHA   Enum = 0x0303
	DST_ALPHA             Enum = 0x0304
	ONE_MINUS_DST_ALPHA   Enum = 0x0305
	DST_COLOR             Enum = 0x0306
	ONE_MINUS_DST_COLOR   Enum = 0x0307
	SRC_ALPHA_SATURATE    Enum = 0x0308
	FUNC_ADD              Enum = 0x8006
	MIN                   Enum = 0x8007
	MAX                   Enum = 0x8008
	FUNC_SUBTRACT         Enum = 0x800A
	FUNC_REVERSE_SUBTRACT Enum = 0x800B

	// Faces and winding
	FRONT          Enum = 0x0404
	BACK           Enum = 0x0405
	FRONT_AND_BACK Enum = 0x0408
	CW             Enum = 0x0900
	CCW            Enum = 0x0901

	// Capabilities
	CULL_FACE                Enum = 0x0B44
	DEPTH_TEST               Enum = 0x0B71
	STENCIL_TEST             Enum = 0x0B90
	DITHER                   Enum = 0x0BD0
	BLEND                    Enum = 0x0BE2
	SCISSOR_TEST             Enum = 0x0C11
	POLYGON_OFFSET_FILL      Enum = 0x8037
	SAMPLE_ALPHA_TO_COVERAGE Enum = 0x809E

	// Comparison functions
	NEVER    Enum = 0x0200
	LESS     Enum = 0x0201
	EQUAL    Enum = 0x0202
	LEQUAL   Enum = 0x0203
	GREATER  Enum = 0x0204
	NOTEQUAL Enum = 0x0205
	GEQUAL   Enum = 0x0206
	ALWAYS   Enum = 0x0207

	// Stencil ops
	KEEP    Enum = 0x1E00
	REPLACE Enum = 0x1E01
	INCR    Enum = 0x1E02
	DECR    Enum = 0x1E03
	INVERT  Enum = 0x150A

	// Errors
	NO_ERROR          Enum = 0
	INVALID_ENUM      Enum = 0x0500
	INVALID_VALUE     Enum = 0x0501
	INVALID_OPERATION Enum = 0x0502
	OUT_OF_MEMORY     Enum = 0x0505
	CONTEXT_LOST      Enum = 0x9242

	// Data types
	BYTE           Enum = 0x1400
	UNSIGNED_BYTE  Enum = 0x1401
	SHORT          Enum = 0x1402
	UNSIGNED_SHORT Enum = 0x1403
	INT            Enum = 0x1404
	UNSIGNED_INT   Enum = 0x1405
	FLOAT          Enum = 0x1406
	HALF_FLOAT     Enum = 0x140B

	// Pixel formats
	DEPTH_COMPONENT   Enum = 0x1902
	ALPHA             Enum = 0x1906
	RGB               Enum = 0x1907
	RGBA              Enum = 0x1908
	LUMINANCE         Enum = 0x1909
	DEPTH_STENCIL     Enum = 0x84F9
	DEPTH24_STENCIL8  Enum = 0x88F0
	DEPTH_COMPONENT16 Enum = 0x81A5
	DEPTH_COMPONENT24 Enum = 0x81A6
	UNSIGNED_INT_24_8 Enum = 0x84FA

	COMPRESSED_RGB_S3TC_DXT1_EXT  Enum = 0x83F0
	COMPRESSED_RGBA_S3TC_DXT5_EXT Enum = 0x83F3

	// Buffers
	ARRAY_BUFFER         Enum = 0x8892
	ELEMENT_ARRAY_BUFFER Enum = 0x8893
	STREAM_DRAW          Enum = 0x88E0
	STATIC_DRAW          Enum = 0x88E4
	DYNAMIC_DRAW         Enum = 0x88E8

	// Shaders and programs
	FRAGMENT_SHADER   Enum = 0x8B30
	VERTEX_SHADER     Enum = 0x8B31
	COMPILE_STATUS    Enum = 0x8B81
	LINK_STATUS       Enum = 0x8B82
	ACTIVE_UNIFORMS   Enum = 0x8B86
	ACTIVE_ATTRIBUTES Enum = 0x8B89

	// Uniform and attribute types
	FLOAT_VEC2   Enum = 0x8B50
	FLOAT_VEC3   Enum = 0x8B51
	FLOAT_VEC4   Enum = 0x8B52
	INT_VEC2     Enum = 0x8B53
	INT_VEC3     Enum = 0x8B54
	INT_VEC4     Enum = 0x8B55
	BOOL         Enum = 0x8B56
	BOOL_VEC2    Enum = 0x8B57
	BOOL_VEC3    Enum = 0x8B58
	BOOL_VEC4    Enum = 0x8B59
	FLOAT_MAT2   Enum = 0x8B5A
	FLOAT_MAT3   Enum = 0x8B5B
	FLOAT_MAT4   Enum = 0x8B5C
	SAMPLER_2D   Enum = 0x8B5E
	SAMPLER_CUBE Enum = 0x8B60

	// Textures
	TEXTURE_2D                     Enum = 0x0DE1
	TEXTURE_CUBE_MAP               Enum = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X    Enum = 0x8515
	TEXTURE0                       Enum = 0x84C0
	TEXTURE_MAG_FILTER             Enum = 0x2800
	TEXTURE_MIN_FILTER             Enum = 0x2801
	TEXTURE_WRAP_S                 Enum = 0x2802
	TEXTURE_WRAP_T                 Enum = 0x2803
	TEXTURE_MAX_ANISOTROPY_EXT     Enum = 0x84FE
	NEAREST                        Enum = 0x2600
	LINEAR                         Enum = 0x2601
	NEAREST_MIPMAP_NEAREST         Enum = 0x2700
	LINEAR_MIPMAP_NEAREST          Enum = 0x2701
	NEAREST_MIPMAP_LINEAR          Enum = 0x2702
	LINEAR_MIPMAP_LINEAR           Enum = 0x2703
	REPEAT                         Enum = 0x2901
	CLAMP_TO_EDGE                  Enum = 0x812F
	MIRRORED_REPEAT                Enum = 0x8370
	UNPACK_ALIGNMENT               Enum = 0x0CF5
	UNPACK_FLIP_Y_WEBGL            Enum = 0x9240
	UNPACK_PREMULTIPLY_ALPHA_WEBGL Enum = 0x9241

	// Framebuffers
	FRAMEBUFFER                      Enum = 0x8D40
	RENDERBUFFER                     Enum = 0x8D41
	COLOR_ATTACHMENT0                Enum = 0x8CE0
	DEPTH_ATTACHMENT                 Enum = 0x8D00
	STENCIL_ATTACHMENT               Enum = 0x8D20
	DEPTH_STENCIL_ATTACHMENT         Enum = 0x821A
	FRAMEBUFFER_COMPLETE             Enum = 0x8CD5
	IMPLEMENTATION_COLOR_READ_FORMAT Enum = 0x8B9B
	IMPLEMENTATION_COLOR_READ_TYPE   Enum = 0x8B9A

	// Parameters
	MAX_TEXTURE_SIZE                 Enum = 0x0D33
	MAX_CUBE_MAP_TEXTURE_SIZE        Enum = 0x851C
	MAX_TEXTURE_IMAGE_UNITS          Enum = 0x8872
	MAX_VERTEX_TEXTURE_IMAGE_UNITS   Enum = 0x8B4C
	MAX_COMBINED_TEXTURE_IMAGE_UNITS Enum = 0x8B4D
	MAX_VERTEX_ATTRIBS               Enum = 0x8869
	MAX_VERTEX_UNIFORM_VECTORS       Enum = 0x8DFB
	MAX_FRAGMENT_UNIFORM_VECTORS     Enum = 0x8DFD
	MAX_VARYING_VECTORS              Enum = 0x8DFC
	MAX_SAMPLES                      Enum = 0x8D57
	MAX_TEXTURE_MAX_ANISOTROPY_EXT   Enum = 0x84FF
)
