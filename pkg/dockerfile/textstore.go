package dockerfile

import (
	"io"
	"os"

	"github.com/tim-vk/dockerfile-parse/pkg/dferrors"
)

// Content returns the full backing text, reading from disk or the
// fileobj unless a cached copy is already held.
func (p *Parser) Content() (string, error) {
	if p.cacheContent && p.cached != nil {
		return *p.cached, nil
	}
	content, err := p.readRaw()
	if err != nil {
		return "", err
	}
	if p.cacheContent {
		p.cached = &content
	}
	return content, nil
}

func (p *Parser) readRaw() (string, error) {
	if p.fileobj != nil {
		if _, err := p.fileobj.Seek(0, io.SeekStart); err != nil {
			return "", dferrors.IOError("seeking fileobj", err)
		}
		data, err := io.ReadAll(p.fileobj)
		if err != nil {
			return "", dferrors.IOError("reading fileobj", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(resolvedPath(p.path))
	if err != nil {
		return "", dferrors.IOError("reading dockerfile", err)
	}
	return string(data), nil
}

// SetContent overwrites the full backing text.
func (p *Parser) SetContent(content string) error {
	if p.fileobj != nil {
		if _, err := p.fileobj.Seek(0, io.SeekStart); err != nil {
			return dferrors.IOError("seeking fileobj", err)
		}
		if tr, ok := p.fileobj.(interface{ Truncate(int64) error }); ok {
			if err := tr.Truncate(0); err != nil {
				return dferrors.IOError("truncating fileobj", err)
			}
		}
		if _, err := p.fileobj.Write([]byte(content)); err != nil {
			return dferrors.IOError("writing fileobj", err)
		}
	} else {
		if err := os.WriteFile(resolvedPath(p.path), []byte(content), 0o644); err != nil {
			return dferrors.IOError("writing dockerfile", err)
		}
	}
	if p.cacheContent {
		c := content
		p.cached = &c
	}
	return nil
}

// Lines returns the backing text split into physical lines, each
// retaining its trailing newline except possibly the last.
func (p *Parser) Lines() ([]string, error) {
	content, err := p.Content()
	if err != nil {
		return nil, err
	}
	return splitKeepEnds(content), nil
}

// SetLines overwrites the backing text with the given physical lines
// joined back together verbatim.
func (p *Parser) SetLines(lines []string) error {
	return p.SetContent(joinLines(lines))
}

func splitKeepEnds(s string) []string {
	if s == "" {
		return []string{}
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func joinLines(lines []string) string {
	var b []byte
	for _, l := range lines {
		b = append(b, l...)
	}
	return string(b)
}

func trimNewlineOnly(line string) string {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		return line[:len(line)-1]
	}
	return line
}
