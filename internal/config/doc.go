// Package config loads and validates the TOML configuration that drives the
// motionforge pipeline. Defaults are embedded alongside a sample document so
// a fresh install runs without a config file; every threshold the analysis,
// retargeting, and variant stages consult is an explicit named field here
// rather than an ambient global.
package config
