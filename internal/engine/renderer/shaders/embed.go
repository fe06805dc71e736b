// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// InstancedVertexShader skins batches of instances from the animation
// texture. MAX_INSTANCES is defined by the renderer at compile time.
//
//go:embed instanced.vert
var InstancedVertexShader string

// InstancedFragmentShader shades instanced parts with their tint.
//
//go:embed instanced.frag
var InstancedFragmentShader string
