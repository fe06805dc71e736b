// Package game runs the crowd demo: window, input, camera and the army.
package game

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/Faultbox/dwarfhorde/internal/assets"
	"github.com/Faultbox/dwarfhorde/internal/config"
	"github.com/Faultbox/dwarfhorde/internal/engine/camera"
	"github.com/Faultbox/dwarfhorde/internal/engine/debug"
	"github.com/Faultbox/dwarfhorde/internal/engine/input"
	"github.com/Faultbox/dwarfhorde/internal/engine/instancing"
	"github.com/Faultbox/dwarfhorde/internal/engine/lighting"
	"github.com/Faultbox/dwarfhorde/internal/engine/renderer"
	"github.com/Faultbox/dwarfhorde/internal/engine/window"
	"github.com/Faultbox/dwarfhorde/internal/game/crowd"
	"github.com/Faultbox/dwarfhorde/internal/logger"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

const title = "Dwarf Horde"

// cameraStart is where the camera spawns and resets to.
var cameraStart = math.Vec3{Y: 20}

// Game is the demo instance.
type Game struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.FirstPersonCamera

	assets *assets.Manager
	model  *instancing.Model
	army   *crowd.Army

	projection math.Mat4

	screenshots       *debug.ScreenshotCapture
	captureScreenshot bool
}

// New creates the window and GL context, loads the model and spawns the army.
func New(cfg *config.Config) (*Game, error) {
	logger.Info("initializing demo",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
	)

	g := &Game{
		config: cfg,
		assets: assets.NewManager(),
		input:  input.New(),
		camera: camera.NewFirstPersonCamera(cameraStart),

		screenshots: debug.NewScreenshotCapture(cfg.Data.ScreenshotDir, "dwarfhorde"),
	}

	var err error
	g.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer comes after the window, which owns the GL context.
	g.renderer, err = renderer.New(renderer.Config{
		Width:         cfg.Graphics.Width,
		Height:        cfg.Graphics.Height,
		InstanceLimit: cfg.Crowd.ShaderInstanceLimit,
		LightDir:      lighting.LightDirection(cfg.Graphics.SunLongitude, cfg.Graphics.SunLatitude),
	})
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	g.renderer.Resize(g.window.GetSize())

	if err := g.spawn(); err != nil {
		g.Close()
		return nil, err
	}

	g.window.SetMouseCaptured(true)
	logger.Info("demo initialized")
	return g, nil
}

// spawn loads the model and positions and builds the army.
func (g *Game) spawn() error {
	data := g.config.Data
	usesFiles := data.AnimationTexture != "" || data.ClipManifest != "" || data.Placements != ""
	if data.AssetRoot != "" {
		if err := g.assets.AddRoot(data.AssetRoot); err != nil {
			if usesFiles {
				return err
			}
			logger.Debug("asset root unavailable", zap.Error(err))
		}
	}

	model, err := g.assets.LoadDwarf(data.AnimationTexture, data.ClipManifest)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	g.model, err = instancing.NewModel(g.renderer, model.Skinning, model.Parts, g.config.Crowd.ShaderInstanceLimit)
	if err != nil {
		return err
	}

	var positions []math.Vec3
	if data.Placements != "" {
		placements, err := g.assets.LoadPlacements(data.Placements)
		if err != nil {
			return err
		}
		positions = crowd.PositionsFromPlacements(placements)
	} else {
		positions = crowd.GridPositions(g.config.Crowd.SpawnCount, g.config.Crowd.SpawnSpacing)
	}

	seed := g.config.Crowd.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.Info("spawning army", zap.Int("positions", len(positions)), zap.Uint64("seed", seed))

	drawers := make([]crowd.PartDrawer, len(g.model.Parts))
	for i, p := range g.model.Parts {
		drawers[i] = p
	}

	policy := crowd.DefaultPolicy
	policy.NearDistanceSq = g.config.Crowd.TargetThresholdNear
	policy.FarDistanceSq = g.config.Crowd.TargetThresholdFar

	g.army, err = crowd.NewArmy(model.Skinning, drawers, positions, rand.New(rand.NewSource(seed)), crowd.Options{
		Policy:      &policy,
		CullWorkers: g.config.Crowd.CullWorkers,
	})
	if err != nil {
		return fmt.Errorf("spawning army: %w", err)
	}
	g.army.SetActiveCount(g.config.Crowd.InitialInstances)
	return nil
}

// Run starts the main loop.
func (g *Game) Run() error {
	g.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting demo loop")

	for g.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if g.input.Update() {
			g.running = false
			break
		}

		for _, event := range g.input.Events() {
			switch event.Type {
			case input.EventWindowResize:
				g.renderer.Resize(event.Width, event.Height)
			case input.EventKeyDown:
				switch event.Key {
				case sdl.SCANCODE_ESCAPE:
					g.running = false
				case sdl.SCANCODE_F12:
					if !event.Repeat {
						g.captureScreenshot = true
					}
				}
			}
		}

		g.update(dt)
		g.render()
		if g.captureScreenshot {
			g.saveScreenshot()
			g.captureScreenshot = false
		}
		g.window.SwapBuffers()

		frameCount++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			g.window.SetTitle(fmt.Sprintf("%s | %d fps | %d instances | %d visible",
				title, frameCount, g.army.ActiveCount(), g.army.VisibleCount()))
			logger.Debug("frame stats",
				zap.Int("fps", frameCount),
				zap.Int("active", g.army.ActiveCount()),
				zap.Int("visible", g.army.VisibleCount()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// update moves the camera, applies instance-count keys and animates the
// army toward the camera.
func (g *Game) update(dt float32) {
	in := g.input

	g.camera.Look(in.MouseDelta())
	// Arrow keys turn at about one radian per second.
	g.camera.Look(
		in.Axis(sdl.SCANCODE_LEFT, sdl.SCANCODE_RIGHT)*dt/g.camera.LookSensitivity,
		in.Axis(sdl.SCANCODE_UP, sdl.SCANCODE_DOWN)*dt/g.camera.LookSensitivity,
	)
	g.camera.Move(in.Axis(sdl.SCANCODE_A, sdl.SCANCODE_D), in.Axis(sdl.SCANCODE_S, sdl.SCANCODE_W), dt)
	if in.IsKeyPressed(sdl.SCANCODE_R) {
		g.camera.Reset()
	}

	if in.IsKeyDown(sdl.SCANCODE_X) {
		g.army.Step(1)
	}
	if in.IsKeyDown(sdl.SCANCODE_Y) {
		g.army.Step(-1)
	}

	g.army.Update(dt, g.camera.Position)
}

// render draws the army from the camera.
func (g *Game) render() {
	gfx := g.config.Graphics
	g.projection = math.Perspective(gfx.FOVDegrees*math32.Pi/180, g.renderer.AspectRatio(), gfx.Near, gfx.Far)

	g.renderer.Begin()
	if err := g.army.Draw(g.camera.ViewMatrix(), g.projection); err != nil {
		// The army already logged each failing part.
		logger.Debug("frame drawn with part errors", zap.Error(err))
	}
	g.renderer.End()
}

// saveScreenshot writes the frame just rendered.
func (g *Game) saveScreenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.screenshots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Close cleans up demo resources.
func (g *Game) Close() {
	logger.Info("closing demo")

	if g.model != nil {
		g.model.Release()
	}
	if g.assets != nil {
		g.assets.Close()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
