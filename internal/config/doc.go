// Package config resolves kmmctl settings and keeps saved sessions.
//
// Settings come from, highest precedence first: command line flags,
// KMMCTL_* environment variables, a YAML options file, and built-in
// defaults. Option keys are the long flag names:
//
//	# kmmctl_options.yaml
//	server-address: eval.parkmedia.tv
//	server-port: 8123
//	username: jane
//	pretty-print: true
//
// The options file is ./kmmctl_options.yaml when present, otherwise
// options.yaml in the config directory:
//   - Linux: $XDG_CONFIG_HOME/kmmctl or $HOME/.config/kmmctl
//   - macOS: $HOME/.config/kmmctl
//   - Windows: %LOCALAPPDATA%\kmmctl
//
// # Sessions
//
// sessions.yaml in the same directory maps host:port to the last captured
// session cookie. It is written atomically with 0600 permissions and never
// contains a password.
package config
