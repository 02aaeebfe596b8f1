package dockerfile

import (
	"strings"

	"github.com/tim-vk/dockerfile-parse/pkg/dferrors"
)

func (p *Parser) entriesAndLines() ([]Entry, []string, error) {
	lines, err := p.Lines()
	if err != nil {
		return nil, nil, err
	}
	entries := buildStructure(lines, escapeChar(lines))
	return entries, lines, nil
}

func lastFromIndex(entries []Entry) int {
	idx := -1
	for i, e := range entries {
		if e.Instruction == "FROM" {
			idx = i
		}
	}
	return idx
}

// replaceEntryLines substitutes a single line for the full physical range
// an entry covers (collapsing any continuation it had).
func replaceEntryLines(lines []string, e Entry, newLine string) []string {
	out := make([]string, 0, len(lines))
	out = append(out, lines[:e.StartLine]...)
	out = append(out, newLine)
	out = append(out, lines[e.EndLine+1:]...)
	return out
}

func deleteEntryLines(lines []string, e Entry) []string {
	out := make([]string, 0, len(lines))
	out = append(out, lines[:e.StartLine]...)
	out = append(out, lines[e.EndLine+1:]...)
	return out
}

func ensureTrailingNewline(line string) string {
	if strings.HasSuffix(line, "\n") {
		return line
	}
	return line + "\n"
}

func ensureFinalNewline(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	last := lines[len(lines)-1]
	if !strings.HasSuffix(last, "\n") {
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}

// AddInstruction appends a new `KEYWORD value` instruction at the end of
// the file.
func (p *Parser) AddInstruction(keyword, value string) error {
	lines, err := p.Lines()
	if err != nil {
		return err
	}
	lines = ensureFinalNewline(lines)
	lines = append(lines, ensureTrailingNewline(strings.ToUpper(keyword)+" "+value))
	return p.SetLines(lines)
}

// AddKeyValueInstruction appends a new `KEYWORD key=value` instruction
// (quoted as needed) at the end of the file.
func (p *Parser) AddKeyValueInstruction(keyword, key, value string) error {
	rendered := quoteKeyForWrite(key, 0) + "=" + quoteValueForWrite(value)
	return p.AddInstruction(keyword, rendered)
}

// deleteEntriesMatching removes every entry for which match returns true.
// Walking in reverse keeps earlier entries' StartLine/EndLine valid as
// later ones are spliced out.
func deleteEntriesMatching(lines []string, entries []Entry, match func(Entry) bool) []string {
	cur := append([]string(nil), lines...)
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if match(e) {
			cur = deleteEntryLines(cur, e)
		}
	}
	return cur
}

// DeleteInstructions removes every occurrence of keyword. If key is
// non-empty, only the matching binding/value is removed: for FROM, the
// image token must match key exactly; for LABEL/ENV/ARG, key names the
// binding to drop, returning ErrNotFound if it's never bound anywhere in
// the file. Deleting an entry's last remaining binding removes the whole
// line.
func (p *Parser) DeleteInstructions(keyword, key string) error {
	entries, lines, err := p.entriesAndLines()
	if err != nil {
		return err
	}
	keyword = strings.ToUpper(keyword)

	if keyword == "FROM" {
		newLines := deleteEntriesMatching(lines, entries, func(e Entry) bool {
			return e.Instruction == "FROM" && (key == "" || firstFromToken(e.Value) == key)
		})
		return p.SetLines(newLines)
	}

	if key == "" {
		newLines := deleteEntriesMatching(lines, entries, func(e Entry) bool {
			return e.Instruction == keyword
		})
		return p.SetLines(newLines)
	}

	found := false
	cur := lines
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Instruction != keyword {
			continue
		}
		pairs, usesEquals, terr := tokenizeKV(e.Value)
		if terr != nil {
			continue
		}
		idx := -1
		for pi, pr := range pairs {
			if pr.Key == key {
				idx = pi
			}
		}
		if idx < 0 {
			continue
		}
		found = true
		remaining := append(pairs[:idx:idx], pairs[idx+1:]...)
		if len(remaining) == 0 {
			cur = deleteEntryLines(cur, e)
		} else {
			cur = replaceEntryLines(cur, e, keyword+" "+renderPairs(remaining, usesEquals)+"\n")
		}
		break
	}
	if !found {
		return dferrors.NotFound(key)
	}
	return p.SetLines(cur)
}

// AddLinesOptions controls where AddLines inserts new instruction lines.
type AddLinesOptions struct {
	// AllStages inserts a copy of the new lines into every stage (at the
	// end of each stage, or after its FROM with AtStart) instead of only
	// appending once at the end of the file.
	AllStages bool
	// AtStart inserts right after each targeted stage's FROM instead of
	// at the end of the file/stage.
	AtStart bool
	// SkipScratch omits a stage whose FROM resolves to scratch when
	// AllStages is set.
	SkipScratch bool
}

// AddLines appends one or more raw instruction lines (each exactly one
// instruction, newline-terminated or not) according to opts. With no
// options set, the lines are appended once at the end of the file.
func (p *Parser) AddLines(lines []string, opts AddLinesOptions) error {
	entries, curLines, err := p.entriesAndLines()
	if err != nil {
		return err
	}
	normalized := make([]string, len(lines))
	for i, l := range lines {
		normalized[i] = ensureTrailingNewline(l)
	}

	if !opts.AllStages && !opts.AtStart {
		curLines = ensureFinalNewline(curLines)
		curLines = append(curLines, normalized...)
		return p.SetLines(curLines)
	}

	fromIdxs := []int{}
	for i, e := range entries {
		if e.Instruction == "FROM" {
			fromIdxs = append(fromIdxs, i)
		}
	}

	if !opts.AllStages {
		// Single target: the last stage.
		if len(fromIdxs) == 0 {
			curLines = ensureFinalNewline(curLines)
			curLines = append(curLines, normalized...)
			return p.SetLines(curLines)
		}
		insertAt := entries[fromIdxs[len(fromIdxs)-1]].EndLine + 1
		return p.SetLines(spliceLines(curLines, insertAt, normalized))
	}

	// AllStages: insert after each stage's FROM (AtStart) or before the
	// next stage's FROM / at EOF, working from the last stage backwards so
	// earlier insert points stay valid.
	globalArgs := p.globalPreFromArgs(entries)
	for i := len(fromIdxs) - 1; i >= 0; i-- {
		e := entries[fromIdxs[i]]
		if opts.SkipScratch && firstFromIsScratch(e.Value, globalArgs, p.buildArgs) {
			continue
		}
		insertAt := e.EndLine + 1
		if !opts.AtStart {
			if i+1 < len(fromIdxs) {
				insertAt = entries[fromIdxs[i+1]].StartLine
			} else {
				curLines = ensureFinalNewline(curLines)
				insertAt = len(curLines)
			}
		}
		curLines = spliceLines(curLines, insertAt, normalized)
	}
	return p.SetLines(curLines)
}

func spliceLines(lines []string, at int, insert []string) []string {
	out := make([]string, 0, len(lines)+len(insert))
	out = append(out, lines[:at]...)
	out = append(out, insert...)
	out = append(out, lines[at:]...)
	return out
}

// LineAnchor identifies where AddLinesAt should act. Exactly one of Index
// (a 0-based physical line that must be the StartLine of a Structure()
// entry), RawLine (matched against each entry's exact source text, and
// required to match exactly one entry), or Entry should be set.
type LineAnchor struct {
	Index   int
	HasIndex bool
	RawLine string
	Entry   *Entry
}

// AddLinesAtOptions controls how AddLinesAt places lines relative to its
// anchor.
type AddLinesAtOptions struct {
	// After inserts after the anchor (and after any continuation lines
	// it owns) instead of before it.
	After bool
	// Replace substitutes the anchor's full physical range with the new
	// lines instead of inserting alongside it.
	Replace bool
}

// AddLinesAt inserts (or, with Replace, substitutes) lines at a specific
// anchor point rather than at the end of a stage or file.
func (p *Parser) AddLinesAt(anchor LineAnchor, lines []string, opts AddLinesAtOptions) error {
	entries, curLines, err := p.entriesAndLines()
	if err != nil {
		return err
	}
	normalized := make([]string, len(lines))
	for i, l := range lines {
		normalized[i] = ensureTrailingNewline(l)
	}

	target, err := resolveAnchor(entries, anchor)
	if err != nil {
		return err
	}

	if opts.Replace {
		out := make([]string, 0, len(curLines))
		out = append(out, curLines[:target.StartLine]...)
		out = append(out, normalized...)
		out = append(out, curLines[target.EndLine+1:]...)
		return p.SetLines(out)
	}

	at := target.StartLine
	if opts.After {
		at = target.EndLine + 1
	}
	return p.SetLines(spliceLines(curLines, at, normalized))
}

func resolveAnchor(entries []Entry, anchor LineAnchor) (Entry, error) {
	if anchor.Entry != nil {
		return *anchor.Entry, nil
	}
	if anchor.HasIndex {
		for _, e := range entries {
			if e.StartLine == anchor.Index {
				return e, nil
			}
		}
		return Entry{}, dferrors.Invariant("line index is not the start of any entry")
	}
	// RawLine is compared with each entry's exact source Content; only
	// trailing newlines are ignored on either side.
	var matches []Entry
	for _, e := range entries {
		if strings.TrimRight(e.Content, "\n") == strings.TrimRight(anchor.RawLine, "\n") {
			matches = append(matches, e)
		}
	}
	if len(matches) != 1 {
		return Entry{}, dferrors.Invariant("raw line does not match exactly one entry")
	}
	return matches[0], nil
}
