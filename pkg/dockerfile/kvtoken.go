package dockerfile

import (
	"strings"

	"github.com/tim-vk/dockerfile-parse/pkg/dferrors"
)

// kvPair is one key/value binding extracted from a LABEL/ENV/ARG
// instruction's Value. RawToken and Dirty together drive write-back:
// an unmodified pair is re-serialized from RawToken verbatim (to preserve
// its exact original quoting and spacing); a Dirty pair is re-rendered
// from Key/Value/KeyQuote using the write-time quoting policy.
type kvPair struct {
	Key      string
	Value    string
	KeyQuote byte // 0, '\'', or '"'
	RawToken string
	Dirty    bool
}

// tokenizeKV splits an already-scanned instruction Value into ordered
// key/value pairs, honoring both the legacy `key value` syntax and the
// modern `key=value [key2=value2 ...]` syntax. A line whose first token is
// `key=value` but which has a later token without `=` is a syntax error. A
// bare first token selects the legacy syntax: it is the key, and the
// remaining tokens, decoded and joined by single spaces, are the value.
func tokenizeKV(value string) ([]kvPair, bool, error) {
	toks, _ := splitKVTokens(value)
	if len(toks) == 0 {
		return nil, false, nil
	}

	usesEquals := findTopLevelEquals(toks[0]) >= 0
	if usesEquals {
		pairs := make([]kvPair, 0, len(toks))
		for _, t := range toks {
			eq := findTopLevelEquals(t)
			if eq < 0 {
				return nil, false, dferrors.SyntaxError(t)
			}
			rawKey := t[:eq]
			rawVal := t[eq+1:]
			key := decodeKVSegments(rawKey)
			val := decodeKVSegments(rawVal)
			pairs = append(pairs, kvPair{
				Key:      key,
				Value:    val,
				KeyQuote: quoteStyleOf(rawKey),
				RawToken: t,
			})
		}
		return pairs, true, nil
	}

	key := decodeKVSegments(toks[0])
	var valBuilder strings.Builder
	for idx := 1; idx < len(toks); idx++ {
		if idx > 1 {
			valBuilder.WriteByte(' ')
		}
		valBuilder.WriteString(decodeKVSegments(toks[idx]))
	}
	return []kvPair{{
		Key:      key,
		Value:    valBuilder.String(),
		KeyQuote: quoteStyleOf(toks[0]),
		RawToken: value,
	}}, false, nil
}

// splitKVTokens splits value into whitespace-separated raw tokens,
// honoring quoted runs (whitespace inside quotes does not split) and
// backslash-escaped characters (an escaped space does not split either).
// gaps[i] is the literal whitespace that followed tokens[i] in value.
func splitKVTokens(value string) (tokens, gaps []string) {
	n := len(value)
	i := 0
	for i < n {
		start := i
	scanToken:
		for i < n {
			c := value[i]
			switch {
			case c == '"':
				i++
				for i < n && value[i] != '"' {
					if value[i] == '\\' && i+1 < n {
						i += 2
						continue
					}
					i++
				}
				if i < n {
					i++
				}
			case c == '\'':
				i++
				for i < n && value[i] != '\'' {
					i++
				}
				if i < n {
					i++
				}
			case c == '\\' && i+1 < n:
				i += 2
			case c == ' ' || c == '\t':
				break scanToken
			default:
				i++
			}
		}
		tokens = append(tokens, value[start:i])
		gapStart := i
		for i < n && (value[i] == ' ' || value[i] == '\t') {
			i++
		}
		gaps = append(gaps, value[gapStart:i])
	}
	return tokens, gaps
}

// findTopLevelEquals returns the byte offset of the first '=' in tok that
// is outside any quoted run, or -1 if there is none.
func findTopLevelEquals(tok string) int {
	i := 0
	for i < len(tok) {
		c := tok[i]
		switch {
		case c == '"':
			i++
			for i < len(tok) && tok[i] != '"' {
				if tok[i] == '\\' && i+1 < len(tok) {
					i += 2
					continue
				}
				i++
			}
			if i < len(tok) {
				i++
			}
		case c == '\'':
			i++
			for i < len(tok) && tok[i] != '\'' {
				i++
			}
			if i < len(tok) {
				i++
			}
		case c == '\\' && i+1 < len(tok):
			i += 2
		case c == '=':
			return i
		default:
			i++
		}
	}
	return -1
}

// decodeKVSegments resolves a raw key or value span into its literal
// text: double-quoted runs recognize \" \\ \<space> \<newline>; single-
// quoted runs are fully literal; unquoted runs treat a backslash as
// escaping the following character. Segments of different kinds
// concatenated with no intervening whitespace decode into one string.
func decodeKVSegments(s string) string {
	var out strings.Builder
	i := 0
	n := len(s)
	for i < n {
		switch c := s[i]; {
		case c == '"':
			i++
			for i < n && s[i] != '"' {
				if s[i] == '\\' && i+1 < n {
					switch s[i+1] {
					case '"', '\\':
						out.WriteByte(s[i+1])
						i += 2
						continue
					case '\n':
						i += 2
						continue
					case ' ':
						out.WriteByte(' ')
						i += 2
						continue
					default:
						out.WriteByte('\\')
						out.WriteByte(s[i+1])
						i += 2
						continue
					}
				}
				out.WriteByte(s[i])
				i++
			}
			if i < n {
				i++
			}
		case c == '\'':
			i++
			for i < n && s[i] != '\'' {
				out.WriteByte(s[i])
				i++
			}
			if i < n {
				i++
			}
		case c == '\\' && i+1 < n:
			out.WriteByte(s[i+1])
			i += 2
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

func quoteStyleOf(tok string) byte {
	if len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"' {
		return '"'
	}
	if len(tok) >= 2 && tok[0] == '\'' && tok[len(tok)-1] == '\'' {
		return '\''
	}
	return 0
}

func needsQuoting(s string) bool {
	return strings.ContainsAny(s, " \t=")
}

func quoteValueForWrite(v string) string {
	if needsQuoting(v) {
		return "'" + v + "'"
	}
	return v
}

func quoteKeyForWrite(k string, style byte) string {
	switch style {
	case '"':
		return `"` + k + `"`
	case '\'':
		return "'" + k + "'"
	default:
		if needsQuoting(k) {
			return "'" + k + "'"
		}
		return k
	}
}

// renderPairs serializes pairs back into an instruction value, reusing
// RawToken verbatim for pairs that were not marked Dirty.
func renderPairs(pairs []kvPair, usesEquals bool) string {
	if len(pairs) == 0 {
		return ""
	}
	if !usesEquals {
		p := pairs[0]
		return strings.TrimSpace(quoteKeyForWrite(p.Key, p.KeyQuote) + " " + quoteValueForWrite(p.Value))
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if !p.Dirty && p.RawToken != "" {
			parts = append(parts, p.RawToken)
			continue
		}
		parts = append(parts, quoteKeyForWrite(p.Key, p.KeyQuote)+"="+quoteValueForWrite(p.Value))
	}
	return strings.Join(parts, " ")
}
