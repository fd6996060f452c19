package keybackend

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// LoadKeysFromFile loads API keys from a text file, one key per line.
// Blank lines and lines starting with "#" are skipped, so an old and a new
// key can be listed side by side while clients rotate:
//
//	# current
//	3c1f0e7a9b
//	# previous, remove after rollout
//	88d2aa41c0
func LoadKeysFromFile(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	var keys []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keys = append(keys, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse keys file: %w", err)
	}

	return keys, nil
}
