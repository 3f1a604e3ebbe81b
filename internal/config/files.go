package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadHeaders reads "Key: Value" lines from path. Blank lines, # comments
// and lines without a colon are skipped.
func LoadHeaders(path string) (map[string]string, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string)
	for _, line := range lines {
		if key, value, ok := ParseHeader(line); ok {
			headers[key] = value
		}
	}
	return headers, nil
}

// LoadCookies reads one cookie per line from path, in name=value or
// "name: value" form, and joins them into a Cookie header value.
func LoadCookies(path string) (string, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return "", err
	}

	var cookies []string
	for _, line := range lines {
		if !strings.ContainsAny(line, "=:") {
			continue
		}
		if name, value, ok := strings.Cut(line, ":"); ok && !strings.Contains(name, "=") {
			line = strings.TrimSpace(name) + "=" + strings.TrimSpace(value)
		}
		cookies = append(cookies, line)
	}
	return strings.Join(cookies, "; "), nil
}

// ParseHeader splits "Key: Value". The key must not be empty.
func ParseHeader(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

// ReadLines returns the trimmed, non-comment, non-blank lines of path.
func ReadLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}
