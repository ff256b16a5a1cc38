package asm

import (
	"regexp"
	"strings"
)

// macroTable holds DEFINE and DEFINEX macros collected during
// preprocessing, per spec §4.3 step 1.
type macroTable struct {
	simple map[string]string   // name -> replacement text
	param  map[string]paramMacro
}

type paramMacro struct {
	params   []string
	template string
}

func newMacroTable() *macroTable {
	return &macroTable{simple: make(map[string]string), param: make(map[string]paramMacro)}
}

var defineRe = regexp.MustCompile(`^DEFINE\s+(\S+)\s+(.*)$`)
var definexRe = regexp.MustCompile(`^DEFINEX\s+\(([^;]+)((?:;[^;)]*)*)\)\s+(.*)$`)

// collect scans raw, comment-stripped source lines for DEFINE/DEFINEX
// declarations, blanking them in the returned body (which keeps the same
// length and indexing as lines, so callers can still report accurate
// source positions against the original file). Later definitions
// overwrite earlier ones of the same name, matching spec §4.3's "last
// definition wins" ordering note.
func (mt *macroTable) collect(lines []string) []string {
	body := make([]string, len(lines))
	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if m := definexRe.FindStringSubmatch(trimmed); m != nil {
			tag := strings.TrimSpace(m[1])
			var params []string
			for _, p := range strings.Split(m[2], ";") {
				p = strings.TrimSpace(p)
				if p != "" {
					params = append(params, p)
				}
			}
			mt.param[tag] = paramMacro{params: params, template: m[3]}
			continue
		}
		if m := defineRe.FindStringSubmatch(trimmed); m != nil {
			mt.simple[m[1]] = m[2]
			continue
		}
		body[i] = raw
	}
	return body
}

// expand applies `[name]` and `[tag] a b c` substitution to one line,
// repeatedly until no further expansion occurs so nested macros resolve
// (each expansion sees the text already expanded by earlier ones).
func (mt *macroTable) expand(line string) string {
	for pass := 0; pass < 32; pass++ {
		next, changed := mt.expandOnce(line)
		if !changed {
			return next
		}
		line = next
	}
	return line
}

var bracketRe = regexp.MustCompile(`\[(\S+)\]((?:\s+\S+)*)`)

func (mt *macroTable) expandOnce(line string) (string, bool) {
	changed := false
	result := bracketRe.ReplaceAllStringFunc(line, func(match string) string {
		parts := bracketRe.FindStringSubmatch(match)
		name := parts[1]
		rest := strings.Fields(parts[2])

		if pm, ok := mt.param[name]; ok {
			out := pm.template
			for i, p := range pm.params {
				if i < len(rest) {
					out = strings.ReplaceAll(out, "?"+strings.TrimPrefix(p, "?"), rest[i])
				}
			}
			changed = true
			return out
		}
		if repl, ok := mt.simple[name]; ok {
			changed = true
			return repl + " " + strings.Join(rest, " ")
		}
		return match
	})
	return result, changed
}
