package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// readTexts returns count texts from r, one per non-blank line, cycling
// through the lines when there are fewer than count.
func readTexts(r io.Reader, count int) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read texts: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("read texts: no lines")
	}
	if count <= 0 {
		return lines, nil
	}

	texts := make([]string, count)
	for i := range texts {
		texts[i] = lines[i%len(lines)]
	}
	return texts, nil
}
