package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestProblems(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fractile.log")
	lines := []string{
		`time=2025-10-08T21:01:05Z level=INFO msg="engine ready" workers=8`,
		`time=2025-10-08T21:01:06Z level=WARN msg="re-arming tile reservation" key=4/10/12`,
		`time=2025-10-08T21:01:07Z level=DEBUG msg="view push" cursor=3`,
		`time=2025-10-08T21:01:08Z level=ERROR msg="tile compute failed" key=4/10/13`,
		`time=2025-10-08T21:01:09Z level=WARN msg="re-arming tile reservation" key=4/10/14`,
	}
	if err := os.WriteFile(logPath, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	got, err := Problems(logPath, 2)
	if err != nil {
		t.Fatalf("Problems() error = %v", err)
	}
	if want := []string{lines[3], lines[4]}; !reflect.DeepEqual(got, want) {
		t.Errorf("Problems() = %v, want %v", got, want)
	}

	all, err := Problems(logPath, 0)
	if err != nil {
		t.Fatalf("Problems() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Problems(0) returned %d lines, want 3", len(all))
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v, want nil, nil", got, err)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{`time=x level=INFO msg=hi`, "INFO"},
		{`time=x level=warn msg=hi`, "WARN"},
		{`level=ERROR`, "ERROR"},
		{`plain text`, ""},
	}
	for _, tt := range tests {
		if got := Level(tt.line); got != tt.want {
			t.Errorf("Level(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
