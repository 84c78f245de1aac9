package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// confEntry is one key = value line from a conf file, kept in file
// order so later duplicates win predictably.
type confEntry struct {
	key   string
	value string
	line  int
}

// parseConfFile reads a flat "key = value" file. Blank lines and lines
// starting with '#' or ';' are ignored. Keys are lowercased.
func parseConfFile(path string) ([]confEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []confEntry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: expected \"key = value\", got %q", path, lineNo, line)
		}
		entries = append(entries, confEntry{
			key:   strings.ToLower(strings.TrimSpace(key)),
			value: strings.TrimSpace(value),
			line:  lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return entries, nil
}
