package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chewxy/math32"

	"retained-renderer/config"
	"retained-renderer/core"
	"retained-renderer/internal/opengl"
	"retained-renderer/math"
	"retained-renderer/renderer"
	"retained-renderer/scene"
)

const (
	orbitSpeed = 1.2  // radians per second
	dollySpeed = 12.0 // units per second
)

func main() {
	configPath := flag.String("config", "", "renderer TOML configuration")
	modelPath := flag.String("model", "", "glTF or GLB file to add to the scene")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(*configPath, *modelPath, logger); err != nil {
		logger.Error("demo failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(configPath, modelPath string, logger *slog.Logger) error {
	cfg := config.Default()
	cfg.Shadows.Enabled = true
	cfg.Shadows.Type = "pcfsoft"
	cfg.ToneMapping = "reinhard"
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	windowConfig := core.DefaultWindowConfig()
	windowConfig.Width, windowConfig.Height = cfg.Width, cfg.Height
	if cfg.Antialias {
		windowConfig.Samples = 4
	}
	window, err := core.NewWindow(windowConfig)
	if err != nil {
		return err
	}
	defer window.Destroy()

	ctx, err := opengl.New(logger)
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	opts := renderer.OptionsFromConfig(cfg)
	opts.PixelRatio = window.ContentScale()
	opts.Logger = logger
	r, err := renderer.New(ctx, opts)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer r.Dispose()

	sc, sun, ambient := buildScene()
	if modelPath != "" {
		model, err := scene.LoadGLTF(modelPath)
		if err != nil {
			return err
		}
		for _, root := range model.Roots {
			root.Traverse(func(n *scene.Node) {
				n.CastShadow, n.ReceiveShadow = true, true
			})
			sc.AddNode(root)
		}
		logger.Info("model loaded", slog.String("path", modelPath), slog.Int("materials", len(model.Materials)))
	}

	camera := scene.NewOrbitCamera(math.Vec3{0, 1.5, 0}, 24, math32.Pi/3, float32(cfg.Width)/float32(cfg.Height))
	window.OnResize(func(width, height int) {
		r.SetSize(width, height)
		camera.UpdateAspectRatio(float32(width), float32(height))
	})

	dayNight := NewDayNight()
	var overlay DebugOverlay
	wireframe, pauseWasDown, wireWasDown := false, false, false
	last := time.Now()
	lastTitle := last

	for !window.ShouldClose() {
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		if window.IsKeyPressed(core.KeyEscape) {
			window.Close()
		}
		updateCamera(window, camera, dt)

		pauseDown := window.IsKeyPressed(core.KeyP)
		if pauseDown && !pauseWasDown {
			dayNight.Active = !dayNight.Active
		}
		pauseWasDown = pauseDown

		wireDown := window.IsKeyPressed(core.KeyF)
		if wireDown && !wireWasDown {
			wireframe = !wireframe
			setWireframe(sc, wireframe)
		}
		wireWasDown = wireDown

		dayNight.Update(dt)
		dayNight.Apply(sc, sun, ambient)

		r.Render(sc, camera.Camera, nil, false)

		if now.Sub(lastTitle) > 500*time.Millisecond {
			lastTitle = now
			overlay.Clear()
			overlay.AddLine("%s", dayNight.TimeOfDayStr())
			overlay.AddLine("%.0f fps", 1/max(dt, 1e-4))
			overlay.AddInfo(r.Info())
			window.SetTitle(windowConfig.Title + " | " + overlay.GetText())
		}

		window.SwapBuffers()
		window.PollEvents()
	}
	return nil
}

func updateCamera(window *core.Window, camera *scene.OrbitCamera, dt float32) {
	var yaw, pitch, dolly float32
	if window.IsKeyPressed(core.KeyLeft) || window.IsKeyPressed(core.KeyA) {
		yaw -= orbitSpeed * dt
	}
	if window.IsKeyPressed(core.KeyRight) || window.IsKeyPressed(core.KeyD) {
		yaw += orbitSpeed * dt
	}
	if window.IsKeyPressed(core.KeyUp) {
		pitch += orbitSpeed * dt
	}
	if window.IsKeyPressed(core.KeyDown) {
		pitch -= orbitSpeed * dt
	}
	if window.IsKeyPressed(core.KeyW) {
		dolly -= dollySpeed * dt
	}
	if window.IsKeyPressed(core.KeyS) {
		dolly += dollySpeed * dt
	}
	if yaw != 0 || pitch != 0 {
		camera.Orbit(yaw, pitch)
	}
	if dolly != 0 {
		camera.Dolly(dolly)
	}
}

func setWireframe(sc *scene.Scene, on bool) {
	sc.Root.Traverse(func(n *scene.Node) {
		if n.Kind != scene.KindMesh {
			return
		}
		for _, m := range append([]*scene.Material{n.Material}, n.Materials...) {
			if m != nil && m.Wireframe != on {
				m.Wireframe = on
				m.MarkDirty()
			}
		}
	})
}

// ── Scene ────────────────────────────────────────────────────────────────────

// buildScene lays out a small town square: four buildings, trees, a
// fountain with a transparent pool, a lamp ring and a cloud of fireflies.
func buildScene() (sc *scene.Scene, sun, ambient *scene.Node) {
	sc = scene.NewScene()

	matGround := scene.NewPhongMaterial(core.Color{R: 0.62, G: 0.58, B: 0.52, A: 1})
	matStone := scene.NewLambertMaterial(core.Color{R: 0.58, G: 0.55, B: 0.50, A: 1})
	matBrick := scene.NewLambertMaterial(core.Color{R: 0.70, G: 0.43, B: 0.30, A: 1})
	matPlaster := scene.NewPhongMaterial(core.Color{R: 0.90, G: 0.87, B: 0.78, A: 1})
	matRoof := scene.NewLambertMaterial(core.Color{R: 0.32, G: 0.30, B: 0.28, A: 1})
	matTrunk := scene.NewLambertMaterial(core.Color{R: 0.42, G: 0.28, B: 0.13, A: 1})
	matLeaves := scene.NewLambertMaterial(core.Color{R: 0.12, G: 0.42, B: 0.15, A: 1})
	matMarble := scene.NewStandardMaterial(core.Color{R: 0.92, G: 0.90, B: 0.86, A: 1}, 0.25, 0)
	matMetal := scene.NewStandardMaterial(core.Color{R: 0.14, G: 0.14, B: 0.12, A: 1}, 0.15, 0.95)

	matWater := scene.NewStandardMaterial(core.Color{R: 0.28, G: 0.52, B: 0.72, A: 1}, 0.08, 0)
	matWater.Transparent = true
	matWater.Opacity = 0.6

	add := func(name string, geo *scene.Geometry, m *scene.Material, pos, scale math.Vec3) *scene.Node {
		n := scene.NewMesh(name, geo, m)
		n.SetPosition(pos)
		n.SetScale(scale)
		n.CastShadow, n.ReceiveShadow = true, true
		sc.AddNode(n)
		return n
	}
	box := func(name string, m *scene.Material, pos, scale math.Vec3) {
		add(name, scene.CreateBox(1, 1, 1), m, pos, scale)
	}

	ground := add("Ground", scene.CreatePlane(80, 80, 1), matGround, math.Vec3{}, math.Vec3{1, 1, 1})
	ground.CastShadow = false

	box("Bldg_NW", matStone, math.Vec3{-15, 4.5, -15}, math.Vec3{9, 9, 9})
	box("Bldg_NW_roof", matRoof, math.Vec3{-15, 9.5, -15}, math.Vec3{10, 1, 10})
	box("Bldg_NE", matBrick, math.Vec3{16, 3.5, -15}, math.Vec3{12, 7, 10})
	box("Bldg_NE_roof", matRoof, math.Vec3{16, 7.5, -15}, math.Vec3{13, 1, 11})
	box("Bldg_SW", matPlaster, math.Vec3{-15, 3, 16}, math.Vec3{8, 6, 8})
	box("Bldg_SW_roof", matRoof, math.Vec3{-15, 6.5, 16}, math.Vec3{9, 1, 9})
	box("Bldg_SE", matStone, math.Vec3{16, 2.5, 16}, math.Vec3{14, 5, 8})
	box("Bldg_SE_roof", matRoof, math.Vec3{16, 5.5, 16}, math.Vec3{15, 1, 9})
	for i, x := range []float32{-10, 10} {
		box(fmt.Sprintf("Wall_%d", i), matStone, math.Vec3{x, 0.5, 0}, math.Vec3{0.6, 1, 14})
	}

	for i, p := range []math.Vec3{{-6, 0, -6}, {6, 0, -6}, {-6, 0, 6}, {6, 0, 6}} {
		add(fmt.Sprintf("Trunk_%d", i), scene.CreateCylinder(0.25, 2.4, 10), matTrunk, p.Add(math.Vec3{0, 1.2, 0}), math.Vec3{1, 1, 1})
		add(fmt.Sprintf("Crown_%d", i), scene.CreateSphere(1.4, 16, 12), matLeaves, p.Add(math.Vec3{0, 3.2, 0}), math.Vec3{1, 1, 1})
	}

	add("Fountain_base", scene.CreateCylinder(3, 0.6, 32), matMarble, math.Vec3{0, 0.3, 0}, math.Vec3{1, 1, 1})
	add("Fountain_rim", scene.CreateTorus(3, 0.25, 48, 12), matMetal, math.Vec3{0, 0.65, 0}, math.Vec3{1, 1, 1})
	add("Fountain_column", scene.CreateCylinder(0.35, 2.5, 16), matMarble, math.Vec3{0, 1.8, 0}, math.Vec3{1, 1, 1})
	water := add("Fountain_water", scene.CreateCylinder(2.8, 0.1, 32), matWater, math.Vec3{0, 0.62, 0}, math.Vec3{1, 1, 1})
	water.CastShadow = false

	ring := scene.NewLine("LampRing", scene.KindLineLoop, scene.CreateLineLoop(8, 48), scene.NewLineMaterial(core.Color{R: 1, G: 0.85, B: 0.45, A: 1}))
	ring.SetPosition(math.Vec3{0, 0.05, 0})
	sc.AddNode(ring)

	sc.AddNode(fireflies(64))

	ambient = scene.NewAmbientLight(core.Color{R: 0.16, G: 0.18, B: 0.26, A: 1}, 1)
	sc.AddNode(ambient)
	sc.AddNode(scene.NewHemisphereLight(core.Color{R: 0.6, G: 0.7, B: 0.9, A: 1}, core.Color{R: 0.12, G: 0.10, B: 0.08, A: 1}, 0.35))

	sun = scene.NewDirectionalLight(core.Color{R: 1, G: 0.98, B: 0.92, A: 1}, 1.2)
	sun.CastShadow = true
	sh := sun.Light.Shadow
	sh.MapSize = [2]int{2048, 2048}
	sh.Camera.Left, sh.Camera.Right, sh.Camera.Top, sh.Camera.Bottom = -30, 30, 30, -30
	sh.Camera.Far = 80
	sh.Camera.UpdateProjectionMatrix()
	sh.Bias = -0.0005
	sc.AddNode(sun)

	lamp := scene.NewPointLight(core.Color{R: 1, G: 0.8, B: 0.45, A: 1}, 1.5, 12, 2)
	lamp.SetPosition(math.Vec3{0, 3.4, 0})
	sc.AddNode(lamp)

	return sc, sun, ambient
}

// fireflies scatters n points on a deterministic spiral above the square.
func fireflies(n int) *scene.Node {
	positions := make([]float32, 0, n*3)
	for i := range n {
		t := float32(i) / float32(n)
		angle := t * 6 * math32.Pi
		radius := 4 + 8*t
		positions = append(positions, radius*math32.Cos(angle), 1.5+2*math32.Sin(t*5*math32.Pi), radius*math32.Sin(angle))
	}
	geo := scene.NewGeometry("Fireflies")
	geo.SetAttribute("position", scene.NewFloatAttribute(positions, 3))

	m := scene.NewPointsMaterial(core.Color{R: 1, G: 0.95, B: 0.5, A: 1}, 4)
	m.Transparent = true
	return scene.NewPoints("Fireflies", geo, m)
}
