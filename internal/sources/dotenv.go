package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DotenvFileName is the file looked up by DiscoverDotenv.
const DotenvFileName = ".env"

// ErrMalformedDotenv is returned for a dotenv file godotenv cannot parse. The
// parser's own message quotes the offending line, which may hold a secret, so
// only the path is reported.
var ErrMalformedDotenv = errors.New("malformed dotenv file")

// Dotenv is the merged content of the dotenv files that exist.
type Dotenv struct {
	Values map[string]string
	// Files lists the files actually read, in scan order.
	Files []string
}

// LoadDotenv reads paths in order. A key keeps the value from the first file
// defining it; missing files are skipped.
func LoadDotenv(paths []string) (Dotenv, error) {
	out := Dotenv{Values: map[string]string{}}
	for _, path := range paths {
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Dotenv{}, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}

		values, err := godotenv.Read(path)
		if err != nil {
			return Dotenv{}, fmt.Errorf("parse %s: %w", path, ErrMalformedDotenv)
		}
		for key, value := range values {
			if _, seen := out.Values[key]; !seen {
				out.Values[key] = value
			}
		}
		out.Files = append(out.Files, path)
	}
	return out, nil
}

// DiscoverDotenv walks from dir up to the filesystem root and returns every
// .env file found, nearest first.
func DiscoverDotenv(dir string) ([]string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var found []string
	for {
		candidate := filepath.Join(dir, DotenvFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			found = append(found, candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return found, nil
}
