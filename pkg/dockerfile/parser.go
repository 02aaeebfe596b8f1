// Package dockerfile parses and rewrites Dockerfiles while preserving
// comments, continuation structure, and quoting style.
//
// A Parser wraps either a path on disk or a seekable in-memory buffer and
// exposes both the raw text (Content/Lines) and derived views built on top
// of it (Structure, ContextStructure, Baseimage, Labels, ...). Rewrites
// always go back through the text store, never through a cached derived
// view, so the next read reflects the change.
package dockerfile

import (
	"io"
	"os"
	"path/filepath"

	"github.com/tim-vk/dockerfile-parse/pkg/dferrors"
)

// CommentInstruction is the sentinel Instruction value used for comment
// entries in Structure().
const CommentInstruction = "COMMENT"

// Parser reads and rewrites a single Dockerfile.
type Parser struct {
	path    string
	fileobj io.ReadWriteSeeker

	cacheContent bool
	cached       *string

	envReplace bool
	parentEnv  map[string]string
	buildArgs  map[string]string
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithPath sets the backing file path. Mutually exclusive with WithFileobj.
func WithPath(path string) Option {
	return func(p *Parser) { p.path = path }
}

// WithFileobj sets a seekable, writable backing buffer. Mutually exclusive
// with WithPath.
func WithFileobj(rw io.ReadWriteSeeker) Option {
	return func(p *Parser) { p.fileobj = rw }
}

// WithEnvReplace toggles $VAR/${VAR} expansion in the high-level accessors.
// Defaults to enabled.
func WithEnvReplace(enabled bool) Option {
	return func(p *Parser) { p.envReplace = enabled }
}

// WithParentEnv supplies ENV bindings inherited by the first stage, used
// only when that stage's FROM does not resolve to scratch.
func WithParentEnv(env map[string]string) Option {
	return func(p *Parser) { p.parentEnv = cloneMap(env) }
}

// WithBuildArgs supplies overrides for ARGs the Dockerfile itself declares.
func WithBuildArgs(args map[string]string) Option {
	return func(p *Parser) { p.buildArgs = cloneMap(args) }
}

// WithCacheContent keeps an in-memory copy of the content after the first
// read, so repeated accessors don't re-open the backing file.
func WithCacheContent(enabled bool) Option {
	return func(p *Parser) { p.cacheContent = enabled }
}

// NewParser constructs a Parser. Exactly one of WithPath / WithFileobj
// should be supplied; supplying both is an ErrInvalidArgument.
func NewParser(opts ...Option) (*Parser, error) {
	p := &Parser{envReplace: true}
	for _, opt := range opts {
		opt(p)
	}
	if p.path != "" && p.fileobj != nil {
		return nil, dferrors.InvalidArgument("path and fileobj are mutually exclusive")
	}
	if p.fileobj != nil {
		if _, err := p.fileobj.Seek(0, io.SeekCurrent); err != nil {
			return nil, dferrors.InvalidArgument("fileobj must be seekable")
		}
	}
	return p, nil
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// resolvedPath returns the actual file path backing a path-based parser:
// the path itself if it names a file (or doesn't exist yet), or
// path/Dockerfile if it names an existing directory.
func resolvedPath(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, "Dockerfile")
	}
	return path
}
