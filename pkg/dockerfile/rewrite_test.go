package dockerfile

import (
	"strings"
	"testing"

	"github.com/tim-vk/dockerfile-parse/pkg/dferrors"
)

func TestAddInstruction(t *testing.T) {
	p, err := NewParser(WithPath(writeTestDockerfile(t, "FROM alpine\n")))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if err := p.AddInstruction("RUN", "echo hi"); err != nil {
		t.Fatalf("AddInstruction failed: %v", err)
	}
	content, _ := p.Content()
	if !strings.Contains(content, "RUN echo hi\n") {
		t.Errorf("expected RUN instruction appended, got:\n%s", content)
	}
}

func TestAddKeyValueInstruction(t *testing.T) {
	p, err := NewParser(WithPath(writeTestDockerfile(t, "FROM alpine\n")))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if err := p.AddKeyValueInstruction("LABEL", "team", "platform"); err != nil {
		t.Fatalf("AddKeyValueInstruction failed: %v", err)
	}
	content, _ := p.Content()
	if !strings.Contains(content, "LABEL team=platform\n") {
		t.Errorf("expected LABEL instruction appended, got:\n%s", content)
	}
}

func TestDeleteInstructions_AllOfKeyword(t *testing.T) {
	content := "FROM alpine\nEXPOSE 80\nEXPOSE 443\nRUN echo hi\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if err := p.DeleteInstructions("EXPOSE", ""); err != nil {
		t.Fatalf("DeleteInstructions failed: %v", err)
	}
	out, _ := p.Content()
	if strings.Contains(out, "EXPOSE") {
		t.Errorf("expected all EXPOSE instructions removed, got:\n%s", out)
	}
	if !strings.Contains(out, "RUN echo hi") {
		t.Errorf("expected unrelated instruction preserved, got:\n%s", out)
	}
}

func TestDeleteInstructions_FromByImageToken(t *testing.T) {
	content := "FROM golang:1.21 AS builder\nFROM alpine AS final\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if err := p.DeleteInstructions("FROM", "golang:1.21"); err != nil {
		t.Fatalf("DeleteInstructions failed: %v", err)
	}
	out, _ := p.Content()
	if strings.Contains(out, "golang") {
		t.Errorf("expected matching FROM removed, got:\n%s", out)
	}
	if !strings.Contains(out, "FROM alpine AS final") {
		t.Errorf("expected non-matching FROM preserved, got:\n%s", out)
	}
}

func TestDeleteInstructions_SingleLabelBinding(t *testing.T) {
	content := "FROM alpine\nLABEL a=1 b=2\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if err := p.DeleteInstructions("LABEL", "a"); err != nil {
		t.Fatalf("DeleteInstructions failed: %v", err)
	}
	out, _ := p.Content()
	if strings.Contains(out, "a=1") {
		t.Errorf("expected a binding removed, got:\n%s", out)
	}
	if !strings.Contains(out, "b=2") {
		t.Errorf("expected b binding preserved, got:\n%s", out)
	}
}

func TestDeleteInstructions_LastBindingDropsLine(t *testing.T) {
	content := "FROM alpine\nLABEL a=1\nRUN echo hi\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if err := p.DeleteInstructions("LABEL", "a"); err != nil {
		t.Fatalf("DeleteInstructions failed: %v", err)
	}
	out, _ := p.Content()
	if strings.Contains(out, "LABEL") {
		t.Errorf("expected whole LABEL line removed, got:\n%s", out)
	}
}

func TestDeleteInstructions_NotFound(t *testing.T) {
	content := "FROM alpine\nLABEL a=1\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	err = p.DeleteInstructions("LABEL", "missing")
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if !dferrors.Is(err, dferrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddLines_DefaultAppendsAtEnd(t *testing.T) {
	p, err := NewParser(WithPath(writeTestDockerfile(t, "FROM alpine\n")))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if err := p.AddLines([]string{"RUN echo hi"}, AddLinesOptions{}); err != nil {
		t.Fatalf("AddLines failed: %v", err)
	}
	out, _ := p.Content()
	if !strings.HasSuffix(out, "RUN echo hi\n") {
		t.Errorf("expected line appended at end, got:\n%s", out)
	}
}

func TestAddLines_AllStagesSkipScratch(t *testing.T) {
	content := "FROM scratch AS s1\nFROM alpine AS s2\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	if err := p.AddLines([]string{"LABEL injected=true"}, AddLinesOptions{AllStages: true, SkipScratch: true}); err != nil {
		t.Fatalf("AddLines failed: %v", err)
	}
	out, _ := p.Content()
	if strings.Count(out, "injected=true") != 1 {
		t.Errorf("expected exactly one injected label (scratch stage skipped), got:\n%s", out)
	}
}

func TestAddLinesAt_ReplaceByIndex(t *testing.T) {
	content := "FROM alpine\nRUN echo old\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	entries, err := p.Structure()
	if err != nil {
		t.Fatalf("Structure failed: %v", err)
	}
	runIdx := -1
	for _, e := range entries {
		if e.Instruction == "RUN" {
			runIdx = e.StartLine
		}
	}
	anchor := LineAnchor{Index: runIdx, HasIndex: true}
	if err := p.AddLinesAt(anchor, []string{"RUN echo new"}, AddLinesAtOptions{Replace: true}); err != nil {
		t.Fatalf("AddLinesAt failed: %v", err)
	}
	out, _ := p.Content()
	if strings.Contains(out, "echo old") || !strings.Contains(out, "echo new") {
		t.Errorf("expected replacement of RUN line, got:\n%s", out)
	}
}

func TestAddLinesAt_NotFound(t *testing.T) {
	content := "FROM alpine\n"
	p, err := NewParser(WithPath(writeTestDockerfile(t, content)))
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	anchor := LineAnchor{RawLine: "RUN something-never-present"}
	err = p.AddLinesAt(anchor, []string{"RUN new"}, AddLinesAtOptions{})
	if err == nil {
		t.Fatal("expected error for unresolvable anchor")
	}
}
