package sources

import (
	"os"
	"strings"
)

// Environ snapshots the process environment.
func Environ() map[string]string {
	return ParseEnviron(os.Environ())
}

// ParseEnviron turns KEY=VALUE pairs into a map. Later duplicates win, as
// they do for os.Getenv.
func ParseEnviron(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}
