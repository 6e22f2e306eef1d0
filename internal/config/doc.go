// Package config handles loading and saving the skald configuration file.
//
// # Overview
//
// This package reads and writes skald's TOML configuration, which holds the
// Atlas base URL and the credential pair used for basic auth. Unlike most of
// skald, it is read-write: `skald init` persists credentials through Save.
// Cosmetic settings (the UI theme) live in package prefs instead, so this
// file stays small, sensitive, and rarely rewritten.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/skald/config.toml (default)
//  3. If the config file doesn't exist, return a zero Config
//
// A zero Config is fully usable. Downstream packages own their own defaults:
// the atlas client falls back to the public deployment URL. Empty credentials
// simply mean unauthenticated requests, which the Atlas API accepts for read
// endpoints.
//
// # TOML Format
//
// Example skald config.toml:
//
//	base_url = "https://atlas.fanfic.dev/v0"
//	username = "iris"
//	password = "sekrit"
//
// All fields are optional. Whitespace is trimmed from every field except the
// password, which is passed through to the HTTP layer byte-for-byte.
//
// # File Permissions
//
// Save writes the file with mode 0600 because it contains credentials.
// Parent directories are created with 0755 as needed.
//
// # Path Expansion
//
// The package handles several path formats:
//
//   - Absolute paths: Used as-is ("/etc/skald/config.toml")
//   - Tilde paths: Expanded to home directory ("~/.config/skald")
//   - Relative paths: Converted to absolute based on current directory
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which yields a zero Config)
//   - TOML parsing errors
//
// A config file that exists but does not parse is always an error. Silently
// ignoring a broken credentials file and proceeding unauthenticated would be
// confusing to debug.
//
// # Usage Example
//
//	// Use default config path
//	cfg, err := config.Load("")
//	if err != nil {
//		log.Fatalf("failed to load config: %v", err)
//	}
//
//	// Persist credentials gathered from the user
//	cfg.Username = "iris"
//	cfg.Password = "sekrit"
//	if err := config.Save("", cfg); err != nil {
//		log.Fatalf("failed to save config: %v", err)
//	}
//
// # Testing Considerations
//
// When testing code that uses this package:
//   - Provide explicit config paths to avoid dependency on user's home directory
//   - Use Config struct directly rather than Load() for unit tests
package config
