// Package formats provides parsers for the crowd asset files: baked
// animation textures (VTFA) and placement lists.
package formats
