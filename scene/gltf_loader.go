package scene

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"retained-renderer/core"
	"retained-renderer/math"
)

// GLTFResult holds the nodes and resources loaded from a .glb / .gltf file.
type GLTFResult struct {
	Roots     []*Node // top-level nodes; add each with Scene.AddNode
	Textures  []*Texture
	Materials []*Material
}

// LoadGLTF opens a .glb or .gltf file and returns a scene graph. Geometry,
// metallic-roughness materials, base color and normal textures, and the
// node hierarchy are populated. Primitives that fail to decode are skipped
// with a warning.
func LoadGLTF(path string) (*GLTFResult, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	log := slog.With("gltf", filepath.Base(path))
	dir := filepath.Dir(path)
	result := &GLTFResult{}

	// ── 1. Textures ───────────────────────────────────────────────────────────
	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		img := doc.Images[*gt.Source]

		var tex *Texture
		switch {
		case img.BufferView != nil:
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				log.Warn("image buffer view", "image", *gt.Source, "err", err)
				continue
			}
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("gltf_img_%d", *gt.Source)
			}
			decoded, _, err := image.Decode(bytes.NewReader(raw))
			if err != nil {
				log.Warn("image decode", "image", *gt.Source, "err", err)
				continue
			}
			tex = NewTexture(name, ImageFromGo(decoded))
		case img.URI != "" && !img.IsEmbeddedResource():
			tex, err = LoadTexture(filepath.Join(dir, img.URI))
			if err != nil {
				log.Warn("image load", "image", *gt.Source, "uri", img.URI, "err", err)
				continue
			}
		}

		if tex != nil {
			// glTF UVs already have a top-left origin.
			tex.FlipY = false
			tex.WrapS, tex.WrapT = RepeatWrapping, RepeatWrapping
			texCache[i] = tex
			result.Textures = append(result.Textures, tex)
		}
	}
	lookupTexture := func(idx int) *Texture {
		if idx >= 0 && idx < len(texCache) {
			return texCache[idx]
		}
		return nil
	}

	// ── 2. Materials ─────────────────────────────────────────────────────────
	matCache := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		params := &StandardParams{
			Color:             core.ColorWhite,
			Roughness:         1,
			Metalness:         1,
			EmissiveIntensity: 1,
			NormalScale:       math.Vec2{1, 1},
			AOMapIntensity:    1,
			EnvMapIntensity:   1,
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			params.Color = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
			params.Roughness = float32(pbr.RoughnessFactorOrDefault())
			params.Metalness = float32(pbr.MetallicFactorOrDefault())
			if pbr.BaseColorTexture != nil {
				params.Map = lookupTexture(pbr.BaseColorTexture.Index)
				if params.Map != nil {
					params.Map.Encoding = SRGBEncoding
				}
			}
		}
		if gm.NormalTexture != nil && gm.NormalTexture.Index != nil {
			params.NormalMap = lookupTexture(*gm.NormalTexture.Index)
		}

		mat := NewMaterial(params)
		mat.Name = gm.Name
		if gm.DoubleSided {
			mat.Side = DoubleSide
		}
		switch gm.AlphaMode {
		case gltf.AlphaBlend:
			mat.Transparent = true
			mat.Opacity = params.Color.A
		case gltf.AlphaMask:
			mat.AlphaTest = float32(gm.AlphaCutoffOrDefault())
		}
		matCache[i] = mat
		result.Materials = append(result.Materials, mat)
	}

	// ── 3. Mesh primitives ────────────────────────────────────────────────────
	type primitive struct {
		geometry *Geometry
		material *Material
	}
	meshPrims := make([][]primitive, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			g, err := loadGLTFPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				log.Warn("skipping primitive", "mesh", mi, "primitive", pi, "err", err)
				continue
			}
			var mat *Material
			if prim.Material != nil && *prim.Material < len(matCache) {
				mat = matCache[*prim.Material]
			} else {
				mat = NewStandardMaterial(core.ColorWhite, 1, 0)
			}
			meshPrims[mi] = append(meshPrims[mi], primitive{g, mat})
		}
	}

	// ── 4. Nodes ──────────────────────────────────────────────────────────────
	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := NewNode(name)

		t := gn.TranslationOrDefault()
		n.SetPosition(math.Vec3{float32(t[0]), float32(t[1]), float32(t[2])})

		sc := gn.ScaleOrDefault()
		n.SetScale(math.Vec3{float32(sc[0]), float32(sc[1]), float32(sc[2])})

		r := gn.RotationOrDefault() // [x, y, z, w]
		n.SetRotation(math.Quat{
			W: float32(r[3]),
			V: math.Vec3{float32(r[0]), float32(r[1]), float32(r[2])},
		})

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			prims := meshPrims[*gn.Mesh]
			switch len(prims) {
			case 0:
			case 1:
				n.Kind = KindMesh
				n.Geometry = prims[0].geometry
				n.Material = prims[0].material
			default:
				for pi, p := range prims {
					n.AddChild(NewMesh(fmt.Sprintf("%s_prim%d", name, pi), p.geometry, p.material))
				}
			}
		}
		nodes[i] = n
	}

	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if childIdx < len(nodes) && nodes[childIdx] != nil {
				nodes[i].AddChild(nodes[childIdx])
			}
		}
	}

	// ── 5. Root nodes ─────────────────────────────────────────────────────────
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[*doc.Scene].Nodes {
			if rootIdx < len(nodes) && nodes[rootIdx] != nil {
				result.Roots = append(result.Roots, nodes[rootIdx])
			}
		}
	} else {
		for _, n := range nodes {
			if n != nil && n.Parent == nil {
				result.Roots = append(result.Roots, n)
			}
		}
	}

	log.Debug("loaded", "nodes", len(nodes), "materials", len(matCache), "textures", len(result.Textures))
	return result, nil
}

// loadGLTFPrimitive converts one glTF mesh primitive into a Geometry.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Geometry, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	g := NewGeometry(name)
	g.SetAttribute("position", NewFloatAttribute(flatten3(positions), 3))

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		g.SetAttribute("normal", NewFloatAttribute(flatten3(normals), 3))
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("uvs: %w", err)
		}
		flat := make([]float32, 0, len(uvs)*2)
		for _, uv := range uvs {
			flat = append(flat, uv[0], uv[1])
		}
		g.SetAttribute("uv", NewFloatAttribute(flat, 2))
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		g.SetIndex(NewIndexAttribute(indices))
	}
	return g, nil
}

func flatten3(v [][3]float32) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, p := range v {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}
