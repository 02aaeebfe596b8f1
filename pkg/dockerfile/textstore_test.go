package dockerfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestContentAndSetContent_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Dockerfile")
	os.WriteFile(path, []byte("FROM alpine\n"), 0o644)

	p, err := NewParser(WithPath(path))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}

	content, err := p.Content()
	if err != nil {
		t.Fatalf("Content failed: %v", err)
	}
	if content != "FROM alpine\n" {
		t.Errorf("Content() = %q", content)
	}

	if err := p.SetContent("FROM alpine:3.19\n"); err != nil {
		t.Fatalf("SetContent failed: %v", err)
	}

	content, err = p.Content()
	if err != nil {
		t.Fatalf("Content failed: %v", err)
	}
	if content != "FROM alpine:3.19\n" {
		t.Errorf("Content() after SetContent = %q", content)
	}
}

func TestCacheContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Dockerfile")
	os.WriteFile(path, []byte("FROM alpine\n"), 0o644)

	p, err := NewParser(WithPath(path), WithCacheContent(true))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}

	if _, err := p.Content(); err != nil {
		t.Fatalf("Content failed: %v", err)
	}

	// Mutate the file on disk directly; the cached Parser should not see it.
	os.WriteFile(path, []byte("FROM debian\n"), 0o644)

	content, err := p.Content()
	if err != nil {
		t.Fatalf("Content failed: %v", err)
	}
	if content != "FROM alpine\n" {
		t.Errorf("expected cached content to survive external write, got %q", content)
	}
}

func TestSplitKeepEnds(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", []string{}},
		{"no trailing newline", "FROM alpine", []string{"FROM alpine"}},
		{"trailing newline", "FROM alpine\n", []string{"FROM alpine\n"}},
		{"multi line", "FROM alpine\nRUN echo hi\n", []string{"FROM alpine\n", "RUN echo hi\n"}},
		{"mixed final line", "FROM alpine\nRUN echo hi", []string{"FROM alpine\n", "RUN echo hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitKeepEnds(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("splitKeepEnds(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitKeepEnds(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestJoinLines(t *testing.T) {
	lines := []string{"FROM alpine\n", "RUN echo hi\n"}
	if got := joinLines(lines); got != "FROM alpine\nRUN echo hi\n" {
		t.Errorf("joinLines() = %q", got)
	}
}

func TestTrimNewlineOnly(t *testing.T) {
	if got := trimNewlineOnly("FROM alpine\n"); got != "FROM alpine" {
		t.Errorf("trimNewlineOnly() = %q", got)
	}
	if got := trimNewlineOnly("FROM alpine"); got != "FROM alpine" {
		t.Errorf("trimNewlineOnly() = %q", got)
	}
}
