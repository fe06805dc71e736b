// Package renderer implements the instanced crowd renderer on OpenGL 4.1.
package renderer

import (
	"errors"
	"fmt"
	"strconv"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/dwarfhorde/internal/engine/instancing"
	"github.com/Faultbox/dwarfhorde/internal/engine/renderer/shaders"
	"github.com/Faultbox/dwarfhorde/internal/engine/shader"
	"github.com/Faultbox/dwarfhorde/internal/engine/skinning"
	"github.com/Faultbox/dwarfhorde/internal/logger"
	"github.com/Faultbox/dwarfhorde/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	// InstanceLimit sizes the per-draw instance arrays in the shader.
	InstanceLimit int
	// LightDir is the direction sunlight travels.
	LightDir math.Vec3
}

// Renderer owns the GL state for drawing instanced parts. It implements
// instancing.Device.
type Renderer struct {
	config Config

	program  uint32
	uniforms map[string]int32

	// Animation textures are uploaded on first use.
	textures map[*skinning.AnimationTexture]uint32
}

var _ instancing.Device = (*Renderer)(nil)

var uniformNames = []string{
	"uVertices", "uAnimation", "uBoneDelta", "uRowDelta",
	"uInstanceTransforms", "uInstanceFrames",
	"uView", "uProjection", "uVertexCount", "uBaseVertex",
	"uTint", "uLightDir",
}

const (
	animationUnit = 0
	vertexUnit    = 1
)

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if cfg.InstanceLimit <= 0 {
		return nil, errors.New("renderer: instance limit must be positive")
	}

	r := &Renderer{
		config:   cfg,
		textures: make(map[*skinning.AnimationTexture]uint32),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.ClearColor(0.39, 0.58, 0.93, 1.0) // cornflower blue

	vert := shader.WithDefines(shaders.InstancedVertexShader, map[string]string{
		"MAX_INSTANCES": strconv.Itoa(cfg.InstanceLimit),
	})
	program, err := shader.CompileProgram(vert, shaders.InstancedFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("instanced shader: %w", err)
	}
	r.program = program

	r.uniforms, err = shader.LookupUniforms(program, uniformNames...)
	if err != nil {
		gl.DeleteProgram(program)
		return nil, fmt.Errorf("instanced shader: %w", err)
	}

	gl.UseProgram(program)
	gl.Uniform1i(r.uniforms["uAnimation"], animationUnit)
	gl.Uniform1i(r.uniforms["uVertices"], vertexUnit)
	light := cfg.LightDir.Normalize()
	gl.Uniform3f(r.uniforms["uLightDir"], light.X, light.Y, light.Z)
	gl.UseProgram(0)

	logger.Debug("instanced shader ready",
		zap.Uint32("program", program),
		zap.Int("instanceLimit", cfg.InstanceLimit),
	)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	for tex, id := range r.textures {
		gl.DeleteTextures(1, &id)
		delete(r.textures, tex)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
		r.program = 0
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// AspectRatio returns the viewport's width over its height.
func (r *Renderer) AspectRatio() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

// meshBuffer holds one part's GL objects. Vertices go into a buffer
// texture rather than vertex attributes: the replicated indices address
// copy k of a vertex as index + k*vertexCount, and the shader folds that
// back onto the single stored copy.
type meshBuffer struct {
	name         string
	vao          uint32
	ebo          uint32
	vertexBuffer uint32
	vertexTex    uint32
}

// Release frees the GL objects.
func (b *meshBuffer) Release() {
	if b.vao == 0 {
		return
	}
	gl.DeleteTextures(1, &b.vertexTex)
	gl.DeleteBuffers(1, &b.vertexBuffer)
	gl.DeleteBuffers(1, &b.ebo)
	gl.DeleteVertexArrays(1, &b.vao)
	*b = meshBuffer{name: b.name}
}

// UploadMesh stores vertices in a buffer texture and indices in an element
// buffer bound to a fresh vertex array.
func (r *Renderer) UploadMesh(name string, vertices []instancing.Vertex, indices []uint16) (instancing.MeshBuffer, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("mesh %s: nothing to upload", name)
	}

	b := &meshBuffer{name: name}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, gl.Ptr(indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	gl.GenBuffers(1, &b.vertexBuffer)
	gl.BindBuffer(gl.TEXTURE_BUFFER, b.vertexBuffer)
	gl.BufferData(gl.TEXTURE_BUFFER, len(vertices)*int(unsafe.Sizeof(instancing.Vertex{})), gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.TEXTURE_BUFFER, 0)

	gl.GenTextures(1, &b.vertexTex)
	gl.BindTexture(gl.TEXTURE_BUFFER, b.vertexTex)
	gl.TexBuffer(gl.TEXTURE_BUFFER, gl.RGBA32F, b.vertexBuffer)
	gl.BindTexture(gl.TEXTURE_BUFFER, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		b.Release()
		return nil, fmt.Errorf("mesh %s: GL error 0x%x", name, errCode)
	}

	logger.Debug("mesh uploaded",
		zap.String("mesh", name),
		zap.Int("vertices", len(vertices)),
		zap.Int("indices", len(indices)),
	)
	return b, nil
}

// DrawInstanced issues one indexed draw covering call.InstanceCount()
// copies of a sub-mesh.
func (r *Renderer) DrawInstanced(buf instancing.MeshBuffer, call *instancing.DrawCall) {
	b, ok := buf.(*meshBuffer)
	if !ok || b.vao == 0 {
		logger.Warn("draw with a buffer this renderer did not upload")
		return
	}
	n := int32(call.InstanceCount())
	if n == 0 {
		return
	}

	gl.UseProgram(r.program)
	gl.BindVertexArray(b.vao)

	gl.ActiveTexture(gl.TEXTURE0 + animationUnit)
	gl.BindTexture(gl.TEXTURE_2D, r.animationTexture(call.Texture))
	gl.ActiveTexture(gl.TEXTURE0 + vertexUnit)
	gl.BindTexture(gl.TEXTURE_BUFFER, b.vertexTex)

	u := r.uniforms
	gl.UniformMatrix4fv(u["uView"], 1, false, call.View.Ptr())
	gl.UniformMatrix4fv(u["uProjection"], 1, false, call.Projection.Ptr())
	gl.UniformMatrix4fv(u["uInstanceTransforms"], n, false, &call.Transforms[0][0])
	gl.Uniform1iv(u["uInstanceFrames"], n, &call.Frames[0])
	gl.Uniform1f(u["uBoneDelta"], call.BoneDelta)
	gl.Uniform1f(u["uRowDelta"], call.RowDelta)
	gl.Uniform1i(u["uVertexCount"], int32(call.VertexCount))
	gl.Uniform1i(u["uBaseVertex"], int32(call.BaseVertex))
	gl.Uniform3f(u["uTint"], call.Tint[0], call.Tint[1], call.Tint[2])

	gl.DrawElementsBaseVertex(gl.TRIANGLES, int32(call.PrimitiveCount*3), gl.UNSIGNED_SHORT,
		gl.PtrOffset(call.StartIndex*2), int32(call.BaseVertex))
}

// animationTexture returns the GL texture for tex, uploading it as an
// RGBA32F image four texels wide per bone.
func (r *Renderer) animationTexture(tex *skinning.AnimationTexture) uint32 {
	if id, ok := r.textures[tex]; ok {
		return id
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(tex.Width*4), int32(tex.Height), 0,
		gl.RGBA, gl.FLOAT, gl.Ptr(tex.Texels))

	r.textures[tex] = id
	logger.Debug("animation texture uploaded",
		zap.Uint32("texture", id),
		zap.Int("bones", tex.Width),
		zap.Int("rows", tex.Height),
	)
	return id
}
