package dockerfile

import (
	"regexp"
	"strings"
)

var (
	escapeDirectiveRE = regexp.MustCompile(`^\s*escape\s*=\s*(\S)`)
	syntaxDirectiveRE = regexp.MustCompile(`^\s*syntax\s*=\s*(\S+)`)
)

const defaultEscape = '\\'

// escapeChar scans the leading comment block for a `# escape=X` parser
// directive. It is recognized only as the very first comment in the file,
// or the first comment after a `# syntax=...` comment; any other comment
// ahead of it blocks recognition and the default backslash escape stays
// in effect.
func escapeChar(lines []string) byte {
	blocked := false
	for _, line := range lines {
		stripped := strings.TrimSpace(trimNewlineOnly(line))
		if stripped == "" {
			continue
		}
		if !strings.HasPrefix(stripped, "#") {
			break
		}
		text := strings.TrimPrefix(stripped, "#")
		if m := escapeDirectiveRE.FindStringSubmatch(text); m != nil && !blocked {
			return m[1][0]
		}
		if syntaxDirectiveRE.MatchString(text) {
			continue
		}
		blocked = true
	}
	return defaultEscape
}

// syntaxDirective scans the leading comment block for a `# syntax=...`
// parser directive and returns its value, recognized only as the very
// first comment in the file.
func syntaxDirective(lines []string) (string, bool) {
	for _, line := range lines {
		stripped := strings.TrimSpace(trimNewlineOnly(line))
		if stripped == "" {
			continue
		}
		if !strings.HasPrefix(stripped, "#") {
			return "", false
		}
		text := strings.TrimPrefix(stripped, "#")
		if m := syntaxDirectiveRE.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
		return "", false
	}
	return "", false
}

func endsWithEscape(s string, escape byte) bool {
	return len(s) > 0 && s[len(s)-1] == escape
}

func commentValue(afterHash string) string {
	return strings.TrimPrefix(afterHash, " ")
}

// buildStructure scans the physical lines of a Dockerfile into an ordered
// list of Entry records. Blank lines are skipped. A comment that
// interrupts an escaped continuation is emitted as its own Entry at the
// point it's encountered, before the instruction it interrupts is
// appended to the result.
func buildStructure(lines []string, escape byte) []Entry {
	var entries []Entry
	n := len(lines)
	i := 0
	for i < n {
		lineNoNL := trimNewlineOnly(lines[i])
		leftTrimmed := strings.TrimLeft(lineNoNL, " \t")
		if strings.TrimSpace(leftTrimmed) == "" {
			i++
			continue
		}
		if strings.HasPrefix(leftTrimmed, "#") {
			entries = append(entries, Entry{
				Instruction: CommentInstruction,
				StartLine:   i,
				EndLine:     i,
				Content:     lines[i],
				Value:       commentValue(leftTrimmed[1:]),
			})
			i++
			continue
		}

		startLine := i
		keyword, rest := splitKeyword(lineNoNL)
		parts := []string{rest}
		rawParts := []string{lines[i]}
		cur := lineNoNL
		k := i
		for endsWithEscape(cur, escape) {
			parts[len(parts)-1] = stripTrailingEscape(parts[len(parts)-1], escape)
			k++
			for k < n {
				nextNoNL := trimNewlineOnly(lines[k])
				nextLeft := strings.TrimLeft(nextNoNL, " \t")
				if strings.HasPrefix(nextLeft, "#") {
					entries = append(entries, Entry{
						Instruction: CommentInstruction,
						StartLine:   k,
						EndLine:     k,
						Content:     lines[k],
						Value:       commentValue(nextLeft[1:]),
					})
					// The comment's raw text still belongs to the
					// instruction's physical range even though its
					// content is excluded from Value.
					rawParts = append(rawParts, lines[k])
					k++
					continue
				}
				break
			}
			if k >= n {
				cur = ""
				break
			}
			nextLineNoNL := trimNewlineOnly(lines[k])
			parts = append(parts, nextLineNoNL)
			rawParts = append(rawParts, lines[k])
			cur = nextLineNoNL
		}

		entries = append(entries, Entry{
			Instruction: strings.ToUpper(keyword),
			StartLine:   startLine,
			EndLine:     k,
			Content:     strings.Join(rawParts, ""),
			Value:       strings.TrimSpace(strings.Join(parts, "")),
		})
		i = k + 1
	}
	return entries
}

// splitKeyword splits a line (with its trailing newline already removed)
// into its leading whitespace-delimited keyword and the remainder of the
// line, with the remainder's internal whitespace left untouched.
func splitKeyword(lineNoNL string) (keyword, rest string) {
	i := 0
	for i < len(lineNoNL) && (lineNoNL[i] == ' ' || lineNoNL[i] == '\t') {
		i++
	}
	start := i
	for i < len(lineNoNL) && lineNoNL[i] != ' ' && lineNoNL[i] != '\t' {
		i++
	}
	return lineNoNL[start:i], lineNoNL[i:]
}

func stripTrailingEscape(s string, escape byte) string {
	if len(s) > 0 && s[len(s)-1] == escape {
		return s[:len(s)-1]
	}
	return s
}

// Structure parses the current content into its full Entry list.
func (p *Parser) Structure() ([]Entry, error) {
	lines, err := p.Lines()
	if err != nil {
		return nil, err
	}
	return buildStructure(lines, escapeChar(lines)), nil
}
