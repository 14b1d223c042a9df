package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeplan/forgeplan/internal/artifact"
	"github.com/forgeplan/forgeplan/internal/planner"
)

func TestRulesForPhaseGrowsWithSequence(t *testing.T) {
	names := func(rules []Rule) []string {
		var out []string
		for _, r := range rules {
			out = append(out, r.Name)
		}
		return out
	}

	assert.Equal(t,
		[]string{"references-resolvable", "syntactic-balance"},
		names(RulesForPhase(&planner.Phase{Sequence: 1})))
	assert.Equal(t,
		[]string{"references-resolvable", "syntactic-balance", "structural-soundness"},
		names(RulesForPhase(&planner.Phase{Sequence: 2})))
	assert.Equal(t,
		[]string{"references-resolvable", "syntactic-balance", "structural-soundness", "ui-entry-point"},
		names(RulesForPhase(&planner.Phase{Sequence: 3})))
}

func TestReferencesResolvable(t *testing.T) {
	rule := ruleReferencesResolvable()

	resolved := []artifact.Artifact{
		{Path: "src/lib/db.ts", Content: "export const db = {}\n"},
		{Path: "src/lib/auth.ts", Content: "import { db } from './db'\n"},
		{Path: "src/routes/login.ts", Content: "import { auth } from '../lib/auth'\n"},
	}
	assert.True(t, rule.Check(resolved))

	dangling := []artifact.Artifact{
		{Path: "src/lib/auth.ts", Content: "import { db } from './db'\n"},
	}
	assert.False(t, rule.Check(dangling))
}

func TestReferencesResolvableIndexFile(t *testing.T) {
	rule := ruleReferencesResolvable()

	artifacts := []artifact.Artifact{
		{Path: "src/components/index.ts", Content: "export const Button = {}\n"},
		{Path: "src/app.ts", Content: "import { Button } from './components'\n"},
	}
	assert.True(t, rule.Check(artifacts))
}

func TestSyntacticBalance(t *testing.T) {
	rule := ruleSyntacticBalance()

	cases := []struct {
		content string
		want    bool
	}{
		{"function f() { return [1, 2] }", true},
		{"", true},
		{"function f() { return [1, 2 }", false},
		{"(]", false},
		{"}{", false},
	}
	for _, tc := range cases {
		got := rule.Check([]artifact.Artifact{{Path: "a.ts", Content: tc.content}})
		assert.Equal(t, tc.want, got, tc.content)
	}
}

func TestStructuralSoundness(t *testing.T) {
	rule := ruleStructuralSoundness()

	assert.True(t, rule.Check([]artifact.Artifact{
		{Path: "a.ts", Content: "export function run() {}"},
	}))
	assert.False(t, rule.Check([]artifact.Artifact{
		{Path: "a.ts", Content: "   \n"},
	}))
	assert.False(t, rule.Check([]artifact.Artifact{
		{Path: "a.ts", Content: "// nothing here yet\n"},
	}))
}

func TestUIEntryPoint(t *testing.T) {
	rule := ruleUIEntryPoint()

	withEntry := []artifact.Artifact{
		{Path: "src/components/Button.tsx", Content: "export default function Button() {}"},
		{Path: "src/lib/db.ts", Content: "const db = {}"},
	}
	assert.True(t, rule.Check(withEntry))

	withoutEntry := []artifact.Artifact{
		{Path: "src/components/Button.tsx", Content: "function Button() {}"},
	}
	assert.False(t, rule.Check(withoutEntry))

	// non-UI artifacts are exempt even without exports
	require.True(t, rule.Check([]artifact.Artifact{
		{Path: "src/lib/db.ts", Content: "const db = {}"},
	}))
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "src/lib/db", joinPath("src/lib", "./db"))
	assert.Equal(t, "src/lib/auth", joinPath("src/routes", "../lib/auth"))
	assert.Equal(t, "db", joinPath("", "./db"))
	assert.Equal(t, "lib", joinPath("src", "../../lib"))
}
