package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadInputs returns the configured input strings: the literal list first,
// then the lines of InputFile. Duplicates keep their first position.
func (c *Config) LoadInputs() ([]string, error) {
	inputs := append([]string(nil), c.Inputs...)
	if c.InputFile != "" {
		f, err := os.Open(c.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer f.Close()

		lines, err := ReadInputs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file %s: %w", c.InputFile, err)
		}
		inputs = append(inputs, lines...)
	}
	return Dedupe(inputs), nil
}

// ReadInputs reads one input per line. Blank lines and lines starting with
// '#' are skipped; a trailing CR is dropped. Other whitespace is kept since
// it is part of the user agent.
func ReadInputs(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Dedupe removes repeated strings, preserving first occurrence order.
func Dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
