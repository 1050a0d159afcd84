// Package config loads skydaily's settings.
//
// Settings come from three layers, later ones winning: the YAML config file
// (written with defaults on first run), environment variables prefixed with
// SKYDAILY_ (optionally loaded from a .env file), and command-line flags,
// which the cli package applies on top.
package config
