package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DotEnvFile is the per-directory environment file consulted before a run.
// It carries deployment glue the core never interprets itself: artifact
// cache location, object-store credentials, GIT_VERSION provenance.
const DotEnvFile = ".env"

// LoadDotEnv reads path (DotEnvFile in the working directory when empty)
// and returns its key/value pairs. A missing file is not an error.
//
// Parsing rules:
// - Lines starting with '#' are ignored.
// - Empty lines are ignored.
// - Lines must be of form KEY=VALUE.
// - Whitespace around KEY is trimmed.
// - VALUE is taken as-is (no quote parsing).
func LoadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		path = DotEnvFile
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("cannot open dotenv file %s: %w", path, err)
	}
	defer f.Close()

	out := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		i := strings.Index(line, "=")
		if i <= 0 {
			continue
		}
		k := strings.TrimSpace(line[:i])
		v := line[i+1:]
		if k == "" {
			continue
		}
		out[k] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read dotenv file %s: %w", path, err)
	}
	return out, nil
}

// ApplyDotEnv loads path and exports every key not already present in the
// process environment. Real environment variables always win.
func ApplyDotEnv(path string) error {
	vars, err := LoadDotEnv(path)
	if err != nil {
		return err
	}
	for k, v := range vars {
		if os.Getenv(k) != "" {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("cannot set %s from dotenv: %w", k, err)
		}
	}
	return nil
}
