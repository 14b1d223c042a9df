package executor

import (
	"regexp"
	"strings"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/planner"
)

// Rule is a structural check over a phase's full artifact set.
type Rule struct {
	Name        string
	Description string
	Check       func(artifacts []artifact.Artifact) bool
}

// RulesForPhase picks the rule set for a phase by its position in the
// plan. Foundation phases check reference resolvability and syntactic
// balance; core phases add structural soundness; later feature phases
// add minimal-shape checks for UI artifacts.
func RulesForPhase(phase *planner.Phase) []Rule {
	seq := phase.Sequence
	rules := []Rule{ruleReferencesResolvable(), ruleSyntacticBalance()}
	if seq >= 2 {
		rules = append(rules, ruleStructuralSoundness())
	}
	if seq >= 3 {
		rules = append(rules, ruleUIEntryPoint())
	}
	return rules
}

var relativeImportRe = regexp.MustCompile(`from\s+['"](\.{1,2}/[^'"]+)['"]`)

// ruleReferencesResolvable checks that relative imports between the
// phase's artifacts resolve to a path within the generated set. Imports
// of module packages or earlier phases' files are out of scope here.
func ruleReferencesResolvable() Rule {
	return Rule{
		Name:        "references-resolvable",
		Description: "one or more artifacts import files that were not generated",
		Check: func(artifacts []artifact.Artifact) bool {
			paths := make(map[string]bool, len(artifacts))
			for _, a := range artifacts {
				paths[normalizePath(a.Path)] = true
			}
			for _, a := range artifacts {
				base := dirOf(a.Path)
				for _, m := range relativeImportRe.FindAllStringSubmatch(a.Content, -1) {
					target := normalizePath(joinPath(base, m[1]))
					if !resolvesWithin(paths, target) {
						return false
					}
				}
			}
			return true
		},
	}
}

// ruleSyntacticBalance checks brace, bracket and parenthesis balance per
// artifact. String and comment contexts are not parsed; this is a cheap
// smoke check, not a syntax pass.
func ruleSyntacticBalance() Rule {
	return Rule{
		Name:        "syntactic-balance",
		Description: "one or more artifacts have unbalanced braces, brackets or parentheses",
		Check: func(artifacts []artifact.Artifact) bool {
			for _, a := range artifacts {
				if !balanced(a.Content) {
					return false
				}
			}
			return true
		},
	}
}

// ruleStructuralSoundness requires every non-trivial artifact to export
// or declare something. An artifact whose content is blank or contains
// no declaration keyword is considered an empty shell.
func ruleStructuralSoundness() Rule {
	keywords := []string{"export", "function", "class", "const", "def ", "type ", "interface", "struct"}
	return Rule{
		Name:        "structural-soundness",
		Description: "one or more artifacts contain no declarations",
		Check: func(artifacts []artifact.Artifact) bool {
			for _, a := range artifacts {
				content := strings.TrimSpace(a.Content)
				if content == "" {
					return false
				}
				found := false
				for _, kw := range keywords {
					if strings.Contains(content, kw) {
						found = true
						break
					}
				}
				if !found {
					return false
				}
			}
			return true
		},
	}
}

// ruleUIEntryPoint requires artifacts classified as UI units to expose an
// entry point, a default export or a named component function.
func ruleUIEntryPoint() Rule {
	return Rule{
		Name:        "ui-entry-point",
		Description: "one or more UI artifacts do not expose an entry point",
		Check: func(artifacts []artifact.Artifact) bool {
			for _, a := range artifacts {
				role := artifact.Classify(a.Path)
				if role != artifact.RoleUIUnit && role != artifact.RolePage {
					continue
				}
				if !strings.Contains(a.Content, "export default") &&
					!strings.Contains(a.Content, "export function") &&
					!strings.Contains(a.Content, "export const") {
					return false
				}
			}
			return true
		},
	}
}

func balanced(content string) bool {
	var stack []byte
	pairs := map[byte]byte{')': '(', ']': '[', '}': '{'}
	for i := 0; i < len(content); i++ {
		switch c := content[i]; c {
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[c] {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

func normalizePath(p string) string {
	return strings.TrimPrefix(p, "./")
}

func dirOf(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i]
	}
	return ""
}

func joinPath(base, rel string) string {
	parts := []string{}
	if base != "" {
		parts = strings.Split(base, "/")
	}
	for _, seg := range strings.Split(rel, "/") {
		switch seg {
		case ".", "":
		case "..":
			if len(parts) > 0 {
				parts = parts[:len(parts)-1]
			}
		default:
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/")
}

// resolvesWithin accepts the exact path or the path with a common source
// extension appended, matching how import specifiers omit extensions.
func resolvesWithin(paths map[string]bool, target string) bool {
	if paths[target] {
		return true
	}
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx"} {
		if paths[target+ext] {
			return true
		}
	}
	return paths[target+"/index.ts"] || paths[target+"/index.tsx"]
}
