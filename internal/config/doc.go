// Package config turns command-line flags, the process environment and the
// working directory into resolved settings, and loads the diagnostic server
// configuration with precedence: CLI flags > YAML file > Environment
// variables > Defaults.
package config
