package dockerfile

import "sort"

// KVHandle is a live view over one instruction kind's (LABEL, ENV, or
// ARG) bindings in a Dockerfile's final stage. Reads and writes go
// straight through to the parser's backing content; there is no separate
// buffer to flush.
type KVHandle struct {
	p       *Parser
	keyword string
}

// Labels returns a handle onto the final stage's LABEL bindings.
func (p *Parser) Labels() *KVHandle { return &KVHandle{p: p, keyword: "LABEL"} }

// Envs returns a handle onto the final stage's ENV bindings.
func (p *Parser) Envs() *KVHandle { return &KVHandle{p: p, keyword: "ENV"} }

// Args returns a handle onto the final stage's ARG bindings.
func (p *Parser) Args() *KVHandle { return &KVHandle{p: p, keyword: "ARG"} }

// Get returns every binding of this kind visible in the final stage (a
// later line's value for a repeated key wins), with
// variable references expanded the same way accessors like Baseimage do
// (LABEL keys included, per the key/value expander's rules). ARG values
// reflect a build-arg override where one was supplied to the parser.
func (h *KVHandle) Get() (map[string]string, error) {
	contexts, err := h.p.ContextStructure()
	if err != nil {
		return nil, err
	}
	if len(contexts) == 0 {
		return map[string]string{}, nil
	}
	return contexts[len(contexts)-1].GetValues(ContextKind(h.keyword)), nil
}

// Len reports how many bindings of this kind are currently visible.
func (h *KVHandle) Len() (int, error) {
	m, err := h.Get()
	if err != nil {
		return 0, err
	}
	return len(m), nil
}

// Keys returns the bound names, sorted.
func (h *KVHandle) Keys() ([]string, error) {
	m, err := h.Get()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Equal reports whether the current bindings exactly match other.
func (h *KVHandle) Equal(other map[string]string) (bool, error) {
	m, err := h.Get()
	if err != nil {
		return false, err
	}
	if len(m) != len(other) {
		return false, nil
	}
	for k, v := range other {
		if mv, ok := m[k]; !ok || mv != v {
			return false, nil
		}
	}
	return true, nil
}

// Set replaces the full set of bindings with newMap. A key present
// before and after with an unchanged value is left byte-for-byte as it
// was (original quoting included); a key dropped from newMap has its
// binding removed (deleting the whole line if it was the line's only
// binding); a key whose value changed is rewritten in place; a key that
// didn't exist before is appended as a new physical line.
func (h *KVHandle) Set(newMap map[string]string) error {
	entries, lines, err := h.p.entriesAndLines()
	if err != nil {
		return err
	}
	contexts, err := h.p.ContextStructure()
	if err != nil {
		return err
	}

	type lineEdit struct {
		e       Entry
		pairs   []kvPair
		equals  bool
		changed bool
	}
	var edits []lineEdit
	seen := map[string]bool{}

	fromIdx := lastFromIndex(entries)
	for i, e := range entries {
		if fromIdx >= 0 && i < fromIdx {
			continue
		}
		if e.Instruction != h.keyword {
			continue
		}
		pairs, usesEquals, terr := tokenizeKV(e.Value)
		if terr != nil {
			continue
		}
		lookup := h.p.contextLookup(contexts[i])
		changed := false
		kept := make([]kvPair, 0, len(pairs))
		for _, pr := range pairs {
			key := pr.Key
			if h.keyword == "LABEL" {
				key = h.p.expandIfEnabled(pr.Key, lookup)
			}
			curVal := h.p.expandIfEnabled(pr.Value, lookup)
			if h.keyword == "ARG" {
				if bv, ok := h.p.buildArgs[pr.Key]; ok {
					curVal = bv
				}
			}
			seen[key] = true
			newVal, ok := newMap[key]
			if !ok {
				changed = true
				continue
			}
			if newVal != curVal {
				pr.Value = newVal
				pr.Dirty = true
				changed = true
			}
			kept = append(kept, pr)
		}
		edits = append(edits, lineEdit{e: e, pairs: kept, equals: usesEquals, changed: changed})
	}

	for i := len(edits) - 1; i >= 0; i-- {
		ed := edits[i]
		if len(ed.pairs) == 0 {
			lines = deleteEntryLines(lines, ed.e)
			continue
		}
		if !ed.changed {
			continue
		}
		newLine := h.keyword + " " + renderPairs(ed.pairs, ed.equals) + "\n"
		lines = replaceEntryLines(lines, ed.e, newLine)
	}

	newKeys := make([]string, 0)
	for k := range newMap {
		if !seen[k] {
			newKeys = append(newKeys, k)
		}
	}
	sort.Strings(newKeys)
	if len(newKeys) > 0 {
		lines = ensureFinalNewline(lines)
		for _, k := range newKeys {
			rendered := quoteKeyForWrite(k, 0) + "=" + quoteValueForWrite(newMap[k])
			lines = append(lines, ensureTrailingNewline(h.keyword+" "+rendered))
		}
	}
	return h.p.SetLines(lines)
}

// SetOne assigns a single binding, leaving every other existing binding
// of this kind exactly as it was.
func (h *KVHandle) SetOne(key, value string) error {
	cur, err := h.Get()
	if err != nil {
		return err
	}
	cur[key] = value
	return h.Set(cur)
}

// Delete removes the named binding. It returns ErrNotFound if key is not
// currently bound anywhere in the file.
func (h *KVHandle) Delete(key string) error {
	return h.p.DeleteInstructions(h.keyword, key)
}

func lastStageEntries(entries []Entry) []Entry {
	idx := lastFromIndex(entries)
	if idx < 0 {
		return entries
	}
	return entries[idx:]
}
