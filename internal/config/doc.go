// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.spaced/spaced.toml or OS-specific config directory)
// 3. Project config file (spaced.toml or .spaced.toml in the current directory)
// 4. Environment variables (SPACED_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.spaced/spaced.toml (preferred)
// - Windows: %APPDATA%\spaced\spaced.toml
// - macOS: ~/Library/Application Support/spaced/spaced.toml
// - Linux/BSD: $XDG_CONFIG_HOME/spaced/spaced.toml or ~/.config/spaced/spaced.toml
//
// Project-level config locations (overrides user config):
// - ./spaced.toml (preferred)
// - ./.spaced.toml
//
// The merged configuration is checked against an embedded JSON Schema before
// it is returned, and the interval ladder is sorted and de-duplicated.
package config
