// Package blender invokes headless blender as the rendering engine
// collaborator. The scene, lighting, and interpolation between keyframes are
// the engine's concern; this package only hands over the job document and
// verifies an output file came back.
package blender
