package dockerfile

import (
	"regexp"
	"strings"
)

// tagSplitRE matches a reference's trailing `:tag`, anchored so it
// doesn't mistake a registry port (e.g. localhost:5000/x) for a tag: the
// segment after the final colon must not itself contain a slash.
var tagSplitRE = regexp.MustCompile(`^(.*):([^/:]+)$`)

// firstFromToken returns the leading whitespace-delimited token of a FROM
// instruction's value (the image reference, including any tag/digest),
// ignoring a trailing `AS name` clause. Empty if value is blank.
func firstFromToken(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// stageAlias returns the `AS name` alias of a FROM instruction's value,
// or "" if it has none.
func stageAlias(value string) string {
	fields := strings.Fields(value)
	for i := 1; i < len(fields)-1; i++ {
		if strings.EqualFold(fields[i], "as") {
			return fields[i+1]
		}
	}
	return ""
}

// ImageFrom splits a FROM instruction's value into its image reference
// (including any tag or digest) and its stage alias, if any.
func ImageFrom(fromValue string) (image, alias string) {
	image = firstFromToken(fromValue)
	if image == "" {
		return "", ""
	}
	return image, stageAlias(fromValue)
}

// TagFrom splits a FROM instruction's value into its bare repository
// (tag and alias stripped) and its tag, if any.
func TagFrom(fromValue string) (repo, tag string) {
	image := firstFromToken(fromValue)
	if image == "" {
		return "", ""
	}
	if m := tagSplitRE.FindStringSubmatch(image); m != nil {
		return m[1], m[2]
	}
	return image, ""
}

// TagTo combines a bare (or already-tagged) image reference with a new
// tag, replacing any existing tag. An empty tag strips any existing tag.
func TagTo(image, tag string) string {
	image = strings.TrimSpace(image)
	tag = strings.TrimSpace(tag)
	if image == "" {
		return ""
	}
	if tag == "" {
		if m := tagSplitRE.FindStringSubmatch(image); m != nil {
			return m[1]
		}
		return image
	}
	if m := tagSplitRE.FindStringSubmatch(image); m != nil {
		return m[1] + ":" + tag
	}
	return image + ":" + tag
}

// validTagRE matches a syntactically valid Docker image tag: 1-128
// characters drawn from [A-Za-z0-9_.-], not starting with `.` or `-`.
var validTagRE = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]{0,127}$`)

// ValidTag reports whether tag is a syntactically valid image tag.
func ValidTag(tag string) bool {
	return validTagRE.MatchString(tag)
}
