package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	return tail(path, maxLines, nil)
}

// Problems returns at most maxLines of the most recent WARN and ERROR
// records from a log/slog text log.
func Problems(path string, maxLines int) ([]string, error) {
	return tail(path, maxLines, IsProblem)
}

// Level extracts the level of a slog text record ("level=WARN"). It returns
// an empty string when the line carries no level.
func Level(line string) string {
	idx := strings.Index(line, "level=")
	if idx < 0 {
		return ""
	}
	rest := line[idx+len("level="):]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	return strings.ToUpper(rest)
}

// IsProblem reports whether line is a WARN or ERROR record.
func IsProblem(line string) bool {
	switch Level(line) {
	case "WARN", "ERROR":
		return true
	default:
		return false
	}
}

func tail(path string, maxLines int, keep func(string) bool) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	if maxLines <= 0 {
		return readAll(file, keep)
	}

	ring := make([]string, maxLines)
	scanner := newScanner(file)
	count := 0
	idx := 0
	for scanner.Scan() {
		line := scanner.Text()
		if keep != nil && !keep(line) {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

func readAll(r io.Reader, keep func(string) bool) ([]string, error) {
	var lines []string
	scanner := newScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if keep == nil || keep(line) {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return lines, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
