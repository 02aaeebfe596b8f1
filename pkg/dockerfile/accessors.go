package dockerfile

import (
	"encoding/hex"

	digest "github.com/opencontainers/go-digest"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
	"golang.org/x/crypto/blake2b"

	"github.com/tim-vk/dockerfile-parse/pkg/dferrors"
)

// replaceFirstToken substitutes the leading whitespace-delimited token of
// value with newToken, leaving any surrounding whitespace and trailing
// text (an `AS alias` clause, say) exactly as it was.
func replaceFirstToken(value, newToken string) string {
	i := 0
	for i < len(value) && (value[i] == ' ' || value[i] == '\t') {
		i++
	}
	start := i
	for i < len(value) && value[i] != ' ' && value[i] != '\t' {
		i++
	}
	return value[:start] + newToken + value[i:]
}

func (p *Parser) fromLookup(globalArgs map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		if v, ok := p.buildArgs[name]; ok {
			return v, true
		}
		if v, ok := globalArgs[name]; ok {
			return v, true
		}
		return "", false
	}
}

// expandIfEnabled applies expandVars unless the Parser was constructed
// with WithEnvReplace(false), in which case accessors surface raw
// instruction text untouched.
func (p *Parser) expandIfEnabled(s string, lookup func(string) (string, bool)) string {
	if !p.envReplace {
		return s
	}
	return expandVars(s, lookup)
}

// Baseimage returns the last stage's FROM image reference, with any ARG
// references it contains expanded. It is "" if the file has no FROM.
func (p *Parser) Baseimage() (string, error) {
	entries, err := p.Structure()
	if err != nil {
		return "", err
	}
	idx := lastFromIndex(entries)
	if idx < 0 {
		return "", nil
	}
	lookup := p.fromLookup(p.globalPreFromArgs(entries))
	return p.expandIfEnabled(firstFromToken(entries[idx].Value), lookup), nil
}

// SetBaseimage rewrites the last stage's FROM image reference, leaving
// any `AS alias` clause on that line untouched.
func (p *Parser) SetBaseimage(image string) error {
	entries, lines, err := p.entriesAndLines()
	if err != nil {
		return err
	}
	idx := lastFromIndex(entries)
	if idx < 0 {
		return dferrors.Invariant("no FROM instruction present")
	}
	e := entries[idx]
	newLine := "FROM " + replaceFirstToken(e.Value, image) + "\n"
	return p.SetLines(replaceEntryLines(lines, e, newLine))
}

// Basetag returns the tag component of Baseimage, or "" if it has none.
func (p *Parser) Basetag() (string, error) {
	base, err := p.Baseimage()
	if err != nil {
		return "", err
	}
	_, tag := TagFrom(base)
	return tag, nil
}

// SetBasetag replaces the tag of the last stage's FROM image, preserving
// its repository and any alias.
func (p *Parser) SetBasetag(tag string) error {
	entries, lines, err := p.entriesAndLines()
	if err != nil {
		return err
	}
	idx := lastFromIndex(entries)
	if idx < 0 {
		return dferrors.Invariant("no FROM instruction present")
	}
	e := entries[idx]
	newImage := TagTo(firstFromToken(e.Value), tag)
	newLine := "FROM " + replaceFirstToken(e.Value, newImage) + "\n"
	return p.SetLines(replaceEntryLines(lines, e, newLine))
}

// ParentImages returns, in file order, the (ARG-expanded) image
// reference of every FROM instruction. A FROM with a blank value is
// skipped.
func (p *Parser) ParentImages() ([]string, error) {
	entries, err := p.Structure()
	if err != nil {
		return nil, err
	}
	lookup := p.fromLookup(p.globalPreFromArgs(entries))
	var out []string
	for _, e := range entries {
		if e.Instruction != "FROM" {
			continue
		}
		tok := firstFromToken(e.Value)
		if tok == "" {
			continue
		}
		out = append(out, p.expandIfEnabled(tok, lookup))
	}
	return out, nil
}

// SetParentImages rewrites the image reference of every FROM with a
// non-blank value, in order, preserving each line's alias clause. A FROM
// with a blank value is neither counted nor rewritten. It returns
// ErrInvariant if images doesn't have exactly one entry per non-blank
// FROM instruction.
func (p *Parser) SetParentImages(images []string) error {
	entries, lines, err := p.entriesAndLines()
	if err != nil {
		return err
	}
	var fromEntries []Entry
	for _, e := range entries {
		if e.Instruction == "FROM" && firstFromToken(e.Value) != "" {
			fromEntries = append(fromEntries, e)
		}
	}
	if len(images) != len(fromEntries) {
		return dferrors.Invariant("parent image count does not match stage count")
	}
	for i := len(fromEntries) - 1; i >= 0; i-- {
		e := fromEntries[i]
		newLine := "FROM " + replaceFirstToken(e.Value, images[i]) + "\n"
		lines = replaceEntryLines(lines, e, newLine)
	}
	return p.SetLines(lines)
}

// IsMultistage reports whether the file declares more than one FROM with
// a non-blank value.
func (p *Parser) IsMultistage() (bool, error) {
	entries, err := p.Structure()
	if err != nil {
		return false, err
	}
	count := 0
	for _, e := range entries {
		if e.Instruction == "FROM" && firstFromToken(e.Value) != "" {
			count++
		}
	}
	return count > 1, nil
}

// Cmd returns the last stage's last CMD value, or "" if it has none.
func (p *Parser) Cmd() (string, error) {
	entries, err := p.Structure()
	if err != nil {
		return "", err
	}
	stage := lastStageEntries(entries)
	for i := len(stage) - 1; i >= 0; i-- {
		if stage[i].Instruction == "CMD" {
			return stage[i].Value, nil
		}
	}
	return "", nil
}

// SetCmd rewrites the last stage's last CMD, or appends a new CMD at the
// end of the file if the last stage has none.
func (p *Parser) SetCmd(cmd string) error {
	entries, lines, err := p.entriesAndLines()
	if err != nil {
		return err
	}
	stage := lastStageEntries(entries)
	for i := len(stage) - 1; i >= 0; i-- {
		if stage[i].Instruction == "CMD" {
			newLine := "CMD " + cmd + "\n"
			return p.SetLines(replaceEntryLines(lines, stage[i], newLine))
		}
	}
	lines = ensureFinalNewline(lines)
	lines = append(lines, ensureTrailingNewline("CMD "+cmd))
	return p.SetLines(lines)
}

// Summary is a flattened, marshalable view of a Dockerfile's notable
// properties, suitable for JSON or YAML output from a CLI.
type Summary struct {
	BaseImage    string            `json:"baseImage" yaml:"baseImage"`
	BaseTag      string            `json:"baseTag,omitempty" yaml:"baseTag,omitempty"`
	ParentImages []string          `json:"parentImages,omitempty" yaml:"parentImages,omitempty"`
	Multistage   bool              `json:"multistage" yaml:"multistage"`
	Cmd          string            `json:"cmd,omitempty" yaml:"cmd,omitempty"`
	Labels       map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Envs         map[string]string `json:"envs,omitempty" yaml:"envs,omitempty"`
	Args         map[string]string `json:"args,omitempty" yaml:"args,omitempty"`
}

// Summary builds a flattened Summary of the parsed file, ready for
// json.Marshal or yaml.Marshal. This is a CLI/reporting convenience; see
// JSON for the structure-preserving array form.
func (p *Parser) Summary() (*Summary, error) {
	base, err := p.Baseimage()
	if err != nil {
		return nil, err
	}
	tag, err := p.Basetag()
	if err != nil {
		return nil, err
	}
	parents, err := p.ParentImages()
	if err != nil {
		return nil, err
	}
	multi, err := p.IsMultistage()
	if err != nil {
		return nil, err
	}
	cmd, err := p.Cmd()
	if err != nil {
		return nil, err
	}
	labels, err := p.Labels().Get()
	if err != nil {
		return nil, err
	}
	envs, err := p.Envs().Get()
	if err != nil {
		return nil, err
	}
	args, err := p.Args().Get()
	if err != nil {
		return nil, err
	}
	return &Summary{
		BaseImage:    base,
		BaseTag:      tag,
		ParentImages: parents,
		Multistage:   multi,
		Cmd:          cmd,
		Labels:       labels,
		Envs:         envs,
		Args:         args,
	}, nil
}

// JSON renders the parsed file as an ordered array of single-key objects,
// one per structure entry, in the exact order Structure() produced them
// (comments included, under the key "COMMENT"). Unlike Summary, this is a
// lossless structural view: every instruction and comment in the file gets
// its own entry, in file order, with no stage-scoping or merging applied.
func (p *Parser) JSON() ([]map[string]string, error) {
	entries, err := p.Structure()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]string, 0, len(entries))
	for _, e := range entries {
		key := e.Instruction
		if e.IsComment() {
			key = "COMMENT"
		}
		out = append(out, map[string]string{key: e.Value})
	}
	return out, nil
}

// Digest returns the canonical content digest of the parsed file, the
// same identity used to address image layers and manifests.
func (p *Parser) Digest() (digest.Digest, error) {
	content, err := p.Content()
	if err != nil {
		return "", err
	}
	return digest.FromString(content), nil
}

// Fingerprint returns a short blake2b-256 hash of the file's content,
// cheaper to compute than Digest when only change-detection is needed.
func (p *Parser) Fingerprint() (string, error) {
	content, err := p.Content()
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(sum[:]), nil
}

// SyntaxDirective returns the value of a leading `# syntax=...` comment
// (e.g. "docker/dockerfile:1.4"), if the file has one in the position
// where Docker itself recognizes it. Pair with version.KnownSyntax to
// tell whether this library's classic-syntax model actually covers the
// named frontend.
func (p *Parser) SyntaxDirective() (string, bool, error) {
	lines, err := p.Lines()
	if err != nil {
		return "", false, err
	}
	directive, ok := syntaxDirective(lines)
	return directive, ok, nil
}

// Annotations maps this file's LABEL bindings onto OCI image annotation
// keys, for embedding into an image-spec Manifest or Image config built
// from this Dockerfile.
func (p *Parser) Annotations() (map[string]string, error) {
	labels, err := p.Labels().Get()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	if _, ok := out[specs.AnnotationTitle]; !ok {
		if base, berr := p.Baseimage(); berr == nil && base != "" {
			out[specs.AnnotationBaseImageName] = base
		}
	}
	return out, nil
}
