package dockerfile

import (
	"strings"
	"testing"

	specs "github.com/opencontainers/image-spec/specs-go/v1"
)

func TestBaseimageAndSetBaseimage(t *testing.T) {
	content := "FROM alpine:3.19 AS base\n"
	path := writeTestDockerfile(t, content)
	p, err := NewParser(WithPath(path))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}

	base, err := p.Baseimage()
	if err != nil {
		t.Fatalf("Baseimage failed: %v", err)
	}
	if base != "alpine:3.19" {
		t.Errorf("Baseimage() = %q, want alpine:3.19", base)
	}

	if err := p.SetBaseimage("debian:12"); err != nil {
		t.Fatalf("SetBaseimage failed: %v", err)
	}
	out, _ := p.Content()
	if !strings.Contains(out, "FROM debian:12 AS base") {
		t.Errorf("expected alias preserved after SetBaseimage, got:\n%s", out)
	}
}

func TestBasetagAndSetBasetag(t *testing.T) {
	p, err := NewParser(WithPath(writeTestDockerfile(t, "FROM alpine:3.19\n")))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}

	tag, err := p.Basetag()
	if err != nil {
		t.Fatalf("Basetag failed: %v", err)
	}
	if tag != "3.19" {
		t.Errorf("Basetag() = %q, want 3.19", tag)
	}

	if err := p.SetBasetag("3.20"); err != nil {
		t.Fatalf("SetBasetag failed: %v", err)
	}
	out, _ := p.Content()
	if !strings.Contains(out, "alpine:3.20") {
		t.Errorf("expected tag updated, got:\n%s", out)
	}
}

func TestSetParentImages_CountMismatchErrors(t *testing.T) {
	content := "FROM a\nFROM b\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if err := p.SetParentImages([]string{"only-one"}); err == nil {
		t.Error("expected error for image count mismatch")
	}
}

func TestSetParentImages_RewritesEachFROM(t *testing.T) {
	content := "FROM a AS x\nFROM b AS y\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if err := p.SetParentImages([]string{"c", "d"}); err != nil {
		t.Fatalf("SetParentImages failed: %v", err)
	}
	out, _ := p.Content()
	if !strings.Contains(out, "FROM c AS x") || !strings.Contains(out, "FROM d AS y") {
		t.Errorf("expected both FROM lines rewritten with aliases preserved, got:\n%s", out)
	}
}

func TestIsMultistage(t *testing.T) {
	single, err := NewParser(WithPath(writeTestDockerfile(t, "FROM alpine\n")))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	multi, err := single.IsMultistage()
	if err != nil {
		t.Fatalf("IsMultistage failed: %v", err)
	}
	if multi {
		t.Error("expected single-stage file to report false")
	}

	p2, err := NewParser(WithPath(writeTestDockerfile(t, "FROM a\nFROM b\n")))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	multi2, err := p2.IsMultistage()
	if err != nil {
		t.Fatalf("IsMultistage failed: %v", err)
	}
	if !multi2 {
		t.Error("expected two-FROM file to report true")
	}
}

func TestCmdAndSetCmd(t *testing.T) {
	p, err := NewParser(WithPath(writeTestDockerfile(t, "FROM alpine\nCMD [\"echo\", \"hi\"]\n")))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	cmd, err := p.Cmd()
	if err != nil {
		t.Fatalf("Cmd failed: %v", err)
	}
	if cmd != `["echo", "hi"]` {
		t.Errorf("Cmd() = %q", cmd)
	}

	if err := p.SetCmd(`["echo", "bye"]`); err != nil {
		t.Fatalf("SetCmd failed: %v", err)
	}
	cmd, err = p.Cmd()
	if err != nil {
		t.Fatalf("Cmd failed after SetCmd: %v", err)
	}
	if cmd != `["echo", "bye"]` {
		t.Errorf("Cmd() after SetCmd = %q", cmd)
	}
}

func TestSetCmd_AppendsWhenAbsent(t *testing.T) {
	p, err := NewParser(WithPath(writeTestDockerfile(t, "FROM alpine\n")))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if err := p.SetCmd(`["app"]`); err != nil {
		t.Fatalf("SetCmd failed: %v", err)
	}
	out, _ := p.Content()
	if !strings.Contains(out, `CMD ["app"]`) {
		t.Errorf("expected CMD appended, got:\n%s", out)
	}
}

func TestSummary(t *testing.T) {
	content := "FROM alpine:3.19\nLABEL version=1.0\nENV A=1\nCMD [\"app\"]\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	summary, err := p.Summary()
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.BaseImage != "alpine:3.19" || summary.BaseTag != "3.19" {
		t.Errorf("unexpected base image/tag: %q %q", summary.BaseImage, summary.BaseTag)
	}
	if summary.Labels["version"] != "1.0" {
		t.Errorf("unexpected labels: %v", summary.Labels)
	}
	if summary.Envs["A"] != "1" {
		t.Errorf("unexpected envs: %v", summary.Envs)
	}
	if summary.Cmd != `["app"]` {
		t.Errorf("unexpected cmd: %q", summary.Cmd)
	}
}

func TestSyntaxDirective(t *testing.T) {
	p, err := NewParser(WithPath(writeTestDockerfile(t, "# syntax=docker/dockerfile:1.4\nFROM alpine\n")))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	directive, ok, err := p.SyntaxDirective()
	if err != nil {
		t.Fatalf("SyntaxDirective failed: %v", err)
	}
	if !ok || directive != "docker/dockerfile:1.4" {
		t.Errorf("unexpected directive: %q, ok=%v", directive, ok)
	}

	p2, err := NewParser(WithPath(writeTestDockerfile(t, "FROM alpine\n")))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if _, ok, err := p2.SyntaxDirective(); err != nil || ok {
		t.Errorf("expected no directive, got ok=%v err=%v", ok, err)
	}
}

func TestJSON_StructureOrder(t *testing.T) {
	content := "FROM alpine:3.19\n# a comment\nLABEL version=1.0\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	out, err := p.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 structure entries, got %d: %v", len(out), out)
	}
	if out[0]["FROM"] != "alpine:3.19" {
		t.Errorf("unexpected entry 0: %v", out[0])
	}
	if out[1]["COMMENT"] != "a comment" {
		t.Errorf("unexpected entry 1: %v", out[1])
	}
	if out[2]["LABEL"] != "version=1.0" {
		t.Errorf("unexpected entry 2: %v", out[2])
	}
}

func TestDigestAndFingerprint(t *testing.T) {
	p, err := NewParser(WithPath(writeTestDockerfile(t, "FROM alpine\n")))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	d, err := p.Digest()
	if err != nil {
		t.Fatalf("Digest failed: %v", err)
	}
	if d.String() == "" {
		t.Error("expected non-empty digest")
	}

	fp, err := p.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if len(fp) != 64 {
		t.Errorf("expected 64-char hex fingerprint, got %d chars: %q", len(fp), fp)
	}
}

func TestAnnotations(t *testing.T) {
	content := "FROM alpine:3.19\nLABEL org.opencontainers.image.title=myapp\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	ann, err := p.Annotations()
	if err != nil {
		t.Fatalf("Annotations failed: %v", err)
	}
	if ann[specs.AnnotationTitle] != "myapp" {
		t.Errorf("expected title annotation from LABEL, got %v", ann)
	}
}

func TestAnnotations_DefaultsBaseImageName(t *testing.T) {
	content := "FROM alpine:3.19\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	ann, err := p.Annotations()
	if err != nil {
		t.Fatalf("Annotations failed: %v", err)
	}
	if ann[specs.AnnotationBaseImageName] != "alpine:3.19" {
		t.Errorf("expected base image name annotation fallback, got %v", ann)
	}
}

func TestExpandIfEnabled_Disabled(t *testing.T) {
	content := "ARG FOO=bar\nFROM alpine\nENV VAL=$FOO\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)), WithEnvReplace(false))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	envs, err := p.Envs().Get()
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if envs["VAL"] != "$FOO" {
		t.Errorf("expected raw $FOO left unexpanded, got %q", envs["VAL"])
	}
}
