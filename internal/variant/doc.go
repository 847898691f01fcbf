// Package variant derives the N deterministic render configurations from
// one mission: camera intensity, noise seed and strength, audio offset, and
// a content fingerprint, all pure functions of the mission id and the
// variant index.
package variant
