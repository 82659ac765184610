package layering

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type bag map[string]any

func TestMergeLayersStrongestWins(t *testing.T) {
	strong := bag{"a": 1, "nested": map[string]any{"x": "strong"}}
	weak := bag{"a": 0, "b": 2, "nested": map[string]any{"x": "weak", "y": "weak"}}

	got := MergeLayers(strong, weak)
	require.Equal(t, bag{
		"a":      1,
		"b":      2,
		"nested": map[string]any{"x": "strong", "y": "weak"},
	}, got)
}

func TestMergeLayersDoesNotAliasInputs(t *testing.T) {
	weak := bag{"tags": []string{"a"}, "nested": map[string]any{"x": 1}}
	got := MergeLayers(bag{}, weak)

	got["tags"].([]string)[0] = "changed"
	got["nested"].(map[string]any)["x"] = 2
	require.Equal(t, "a", weak["tags"].([]string)[0])
	require.Equal(t, 1, weak["nested"].(map[string]any)["x"])
}

func TestMergeLayersNil(t *testing.T) {
	require.Nil(t, MergeLayers[bag]())
	require.Nil(t, MergeLayers[bag](nil, nil))
	require.Equal(t, bag{"a": 1}, MergeLayers(nil, bag{"a": 1}))
}

func TestMergeLayersKeepsFunctions(t *testing.T) {
	calls := 0
	fn := func() { calls++ }
	got := MergeLayers(bag{"hook": fn}, bag{"other": true})
	got["hook"].(func())()
	require.Equal(t, 1, calls)
	require.Equal(t, true, got["other"])
}
