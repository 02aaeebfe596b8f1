package dockerfile

import "strings"

// ContextKind selects which per-line binding table a Context exposes.
type ContextKind string

const (
	ContextARG   ContextKind = "ARG"
	ContextENV   ContextKind = "ENV"
	ContextLABEL ContextKind = "LABEL"
)

// Context is the cumulative ARG/ENV/LABEL binding state as of one
// Structure() entry. It resets at every FROM, since each stage starts
// with a clean environment.
type Context struct {
	arg, env, label             map[string]string
	lineArg, lineEnv, lineLabel map[string]string

	// prevEnv/prevArg/parentEnvEligible capture the lookup state in effect
	// while this entry's own pairs were expanded (i.e. before this entry's
	// bindings were folded into arg/env/label above). contextLookup
	// rebuilds the exact expansion lookup from these for callers that need
	// to re-expand a line's raw tokens outside of ContextStructure itself.
	prevEnv, prevArg  map[string]string
	parentEnvEligible bool
}

// GetValues returns a snapshot of every binding of the given kind visible
// at this point in the file (cumulative across the current stage).
func (c *Context) GetValues(kind ContextKind) map[string]string {
	switch kind {
	case ContextARG:
		return cloneMap(c.arg)
	case ContextENV:
		return cloneMap(c.env)
	case ContextLABEL:
		return cloneMap(c.label)
	default:
		return map[string]string{}
	}
}

// GetLineValue returns only the bindings introduced by the instruction at
// this exact entry; empty if the entry is not of the given kind.
func (c *Context) GetLineValue(kind ContextKind) map[string]string {
	switch kind {
	case ContextARG:
		return cloneMap(c.lineArg)
	case ContextENV:
		return cloneMap(c.lineEnv)
	case ContextLABEL:
		return cloneMap(c.lineLabel)
	default:
		return map[string]string{}
	}
}

// ContextStructure parses the current content and returns one Context per
// Structure() entry, in the same order.
func (p *Parser) ContextStructure() ([]*Context, error) {
	entries, err := p.Structure()
	if err != nil {
		return nil, err
	}

	argMap := map[string]string{}
	envMap := map[string]string{}
	labelMap := map[string]string{}
	stageCount := 0
	firstStageScratch := false

	contexts := make([]*Context, 0, len(entries))
	for _, e := range entries {
		lineArg := map[string]string{}
		lineEnv := map[string]string{}
		lineLabel := map[string]string{}

		prevEnv := cloneMap(envMap)
		prevArg := cloneMap(argMap)
		parentEnvEligible := stageCount == 1 && !firstStageScratch

		lookup := func(name string) (string, bool) {
			if v, ok := envMap[name]; ok {
				return v, true
			}
			if v, ok := p.buildArgs[name]; ok {
				return v, true
			}
			if v, ok := argMap[name]; ok {
				return v, true
			}
			if parentEnvEligible {
				if v, ok := p.parentEnv[name]; ok {
					return v, true
				}
			}
			return "", false
		}

		switch e.Instruction {
		case "FROM":
			if stageCount == 0 {
				firstStageScratch = firstFromIsScratch(e.Value, argMap, p.buildArgs)
			}
			argMap = map[string]string{}
			envMap = map[string]string{}
			labelMap = map[string]string{}
			stageCount++
		case "ARG":
			pairs, _, _ := tokenizeKV(e.Value)
			for _, pr := range pairs {
				val := p.expandIfEnabled(pr.Value, lookup)
				if bv, ok := p.buildArgs[pr.Key]; ok {
					val = bv
				}
				argMap[pr.Key] = val
				lineArg[pr.Key] = val
			}
		case "ENV":
			pairs, _, _ := tokenizeKV(e.Value)
			for _, pr := range pairs {
				val := p.expandIfEnabled(pr.Value, lookup)
				envMap[pr.Key] = val
				lineEnv[pr.Key] = val
			}
		case "LABEL":
			pairs, _, _ := tokenizeKV(e.Value)
			for _, pr := range pairs {
				key := p.expandIfEnabled(pr.Key, lookup)
				val := p.expandIfEnabled(pr.Value, lookup)
				labelMap[key] = val
				lineLabel[key] = val
			}
		}

		contexts = append(contexts, &Context{
			prevEnv:           prevEnv,
			prevArg:           prevArg,
			parentEnvEligible: parentEnvEligible,
			arg:               cloneMap(argMap),
			env:               cloneMap(envMap),
			label:             cloneMap(labelMap),
			lineArg:           lineArg,
			lineEnv:           lineEnv,
			lineLabel:         lineLabel,
		})
	}
	return contexts, nil
}

// contextLookup rebuilds the exact variable-lookup function that was used
// to expand entry c's own ARG/ENV/LABEL pairs during ContextStructure, from
// the snapshot Context captured of the cumulative state just before that
// entry's bindings were applied.
func (p *Parser) contextLookup(c *Context) func(string) (string, bool) {
	return func(name string) (string, bool) {
		if v, ok := c.prevEnv[name]; ok {
			return v, true
		}
		if v, ok := p.buildArgs[name]; ok {
			return v, true
		}
		if v, ok := c.prevArg[name]; ok {
			return v, true
		}
		if c.parentEnvEligible {
			if v, ok := p.parentEnv[name]; ok {
				return v, true
			}
		}
		return "", false
	}
}

// firstFromIsScratch resolves a FROM instruction's image reference
// (expanding ARG/build-arg references, never parent env or ENV) and
// reports whether it names the scratch pseudo-image.
func firstFromIsScratch(fromValue string, preArgs, buildArgs map[string]string) bool {
	image := imageTokenFromFROM(fromValue)
	lookup := func(name string) (string, bool) {
		if v, ok := buildArgs[name]; ok {
			return v, true
		}
		if v, ok := preArgs[name]; ok {
			return v, true
		}
		return "", false
	}
	return expandVars(image, lookup) == "scratch"
}

// globalPreFromArgs collects the ARG bindings declared before the file's
// first FROM. Per Docker's stage-scoping rules these are visible to every
// stage's FROM line (and only to FROM lines), unlike ARGs declared inside
// a stage body which are scoped to that stage alone.
func (p *Parser) globalPreFromArgs(entries []Entry) map[string]string {
	args := map[string]string{}
	for _, e := range entries {
		if e.Instruction == "FROM" {
			break
		}
		if e.Instruction != "ARG" {
			continue
		}
		pairs, _, _ := tokenizeKV(e.Value)
		for _, pr := range pairs {
			val := pr.Value
			if bv, ok := p.buildArgs[pr.Key]; ok {
				val = bv
			}
			args[pr.Key] = val
		}
	}
	return args
}

func imageTokenFromFROM(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
