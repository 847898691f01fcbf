// Package stages implements the workflow stage handlers: analysis of a
// source video into the raw motion document, compilation of that document
// into a mission, and rendering of the mission's variants to final footage.
package stages
