package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeHierarchy_NoCycles(t *testing.T) {
	reg, err := compileSource(t, sampleProgram)
	require.NoError(t, err)
	assert.Empty(t, AnalyzeHierarchy(reg))
}

func TestAnalyzeHierarchy_SelfLoop(t *testing.T) {
	reg, err := compileSource(t, `class: "La;": {super: "La;"}`)
	require.NoError(t, err)

	warnings := AnalyzeHierarchy(reg)
	require.Len(t, warnings, 1)
	assert.Equal(t, []string{"La;", "La;"}, warnings[0].Path)
	assert.Equal(t, "warning", warnings[0].Level)
	assert.Contains(t, warnings[0].Message, "extends itself")
}

func TestAnalyzeHierarchy_ThreeClassCycle(t *testing.T) {
	reg, err := compileSource(t, `
		class: "La;": {super: "Lb;"}
		class: "Lb;": {super: "Lc;"}
		class: "Lc;": {interfaces: ["La;"]}
		class: "Ld;": {super: "La;"}
	`)
	require.NoError(t, err)

	warnings := AnalyzeHierarchy(reg)
	require.Len(t, warnings, 1)
	path := warnings[0].Path
	require.Len(t, path, 4)
	assert.Equal(t, path[0], path[3])
	assert.ElementsMatch(t, []string{"La;", "Lb;", "Lc;"}, path[:3])
	assert.Contains(t, warnings[0].Message, "inheritance cycle")
}

func TestAnalyzeHierarchy_UndefinedSupersIgnored(t *testing.T) {
	reg, err := compileSource(t, `class: "La;": {super: "Ljava/lang/Object;", interfaces: ["Lx;"]}`)
	require.NoError(t, err)
	assert.Empty(t, AnalyzeHierarchy(reg))
}
