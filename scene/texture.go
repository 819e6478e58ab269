package scene

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"retained-renderer/math"
)

// Image is CPU-side pixel data, RGBA8 unless the owning texture says
// otherwise.
type Image struct {
	Width  int
	Height int
	Pixels []byte
}

// Texture describes a sampled image. The GPU copy is refreshed whenever the
// version changes; call MarkDirty after replacing Image.
type Texture struct {
	Name string
	// Image is nil until pixel data is available. A nil image is skipped at
	// upload time and the previous GPU contents are kept.
	Image *Image
	// CubeImages, when set, makes this a cube texture (+X, -X, +Y, -Y, +Z, -Z).
	CubeImages []*Image

	Format          Format
	Type            DataType
	Encoding        Encoding
	WrapS, WrapT    Wrapping
	MagFilter       Filter
	MinFilter       Filter
	GenerateMipmaps bool
	FlipY           bool
	Anisotropy      float32

	Offset math.Vec2
	Repeat math.Vec2

	handle       Handle
	version      uint32
	renderTarget *RenderTarget
}

func NewTexture(name string, img *Image) *Texture {
	t := &Texture{
		Name:            name,
		Image:           img,
		WrapS:           ClampToEdgeWrapping,
		WrapT:           ClampToEdgeWrapping,
		MagFilter:       LinearFilter,
		MinFilter:       LinearMipmapLinearFilter,
		GenerateMipmaps: true,
		FlipY:           true,
		Anisotropy:      1,
		Repeat:          math.Vec2{1, 1},
		handle:          textureHandles.acquire(),
	}
	if img != nil {
		t.version = 1
	}
	return t
}

// NewCubeTexture builds a cube texture from six faces.
func NewCubeTexture(name string, faces []*Image) *Texture {
	t := NewTexture(name, nil)
	t.CubeImages = faces
	t.FlipY = false
	if len(faces) == 6 {
		t.version = 1
	}
	return t
}

func (t *Texture) Handle() Handle  { return t.handle }
func (t *Texture) Version() uint32 { return t.version }
func (t *Texture) IsCube() bool    { return t.CubeImages != nil }

// RenderTarget returns the target this texture is the color attachment of.
func (t *Texture) RenderTarget() *RenderTarget { return t.renderTarget }

// MarkDirty schedules a re-upload on next use.
func (t *Texture) MarkDirty() {
	t.version++
}

// Dispose returns the handle for reuse. Use Renderer.DisposeTexture to also
// free the GPU texture.
func (t *Texture) Dispose() {
	textureHandles.release(t.handle)
	t.handle = 0
}

// LoadTexture reads a PNG or JPEG file from disk and returns a CPU-side Texture.
// The image is converted to RGBA8 automatically.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return NewTexture(path, ImageFromGo(img)), nil
}

// ImageFromGo converts any image.Image to RGBA8.
func ImageFromGo(img image.Image) *Image {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return &Image{Width: bounds.Dx(), Height: bounds.Dy(), Pixels: rgba.Pix}
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	t := NewTexture(name, &Image{Width: 1, Height: 1, Pixels: []byte{r, g, b, a}})
	t.MinFilter = NearestFilter
	t.MagFilter = NearestFilter
	t.GenerateMipmaps = false
	return t
}
