package querysrv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/nido/query"
	"github.com/Abraxas-365/nido/tool"
)

func TestExtractJSON_SurroundedByProse(t *testing.T) {
	text := "Sure! Here is my analysis:\n```json\n{\"confidence\": 0.8}\n```\nLet me know if you need more."

	parsed, err := extractJSON(text)
	require.NoError(t, err)
	assert.Equal(t, 0.8, parsed["confidence"])
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, err := extractJSON("I could not produce a selection for this query.")
	assert.Error(t, err)
}

func TestExtractJSON_MalformedObject(t *testing.T) {
	_, err := extractJSON("{\"confidence\": }")
	assert.Error(t, err)
}

func TestParseSelection_ResolvesToolsByName(t *testing.T) {
	available := []tool.Tool{
		makeTool("sleep_analyzer", tool.ToolTypeSleepPatternAnalyzer),
		makeTool("feeding_tracker", tool.ToolTypeFeedingTracker),
	}

	text := `{
		"query_classification": "sleep_analysis",
		"selected_tools": [
			{"tool_name": "Sleep_Analyzer", "relevance_score": 0.92, "selection_reason": "query is about sleep"}
		],
		"reasoning": "The user asks about last night's sleep",
		"confidence": 0.9,
		"thinking": "sleep keywords dominate"
	}`

	result, err := parseSelection(text, available, 3)
	require.NoError(t, err)

	// El nombre se resuelve sin distinguir mayúsculas.
	require.Len(t, result.SelectedTools, 1)
	assert.Equal(t, "sleep_analyzer", result.SelectedTools[0].Name)
	assert.Equal(t, 0.92, result.ToolInfo[0].RelevanceScore)
	assert.Equal(t, "query is about sleep", result.ToolInfo[0].SelectionReason)
	assert.Equal(t, query.QueryTypeSleepAnalysis, result.QueryClassification)
	assert.Equal(t, 0.9, result.Confidence)
	assert.Equal(t, "sleep keywords dominate", result.ThinkingProcess)
	assert.False(t, result.FallbackUsed)
}

func TestParseSelection_DropsUnknownTools(t *testing.T) {
	available := []tool.Tool{makeTool("sleep_analyzer", tool.ToolTypeSleepPatternAnalyzer)}

	text := `{
		"selected_tools": [
			{"tool_name": "made_up_tool", "relevance_score": 0.9},
			{"tool_name": "sleep_analyzer", "relevance_score": 0.7}
		],
		"confidence": 0.8
	}`

	result, err := parseSelection(text, available, 3)
	require.NoError(t, err)
	require.Len(t, result.SelectedTools, 1)
	assert.Equal(t, "sleep_analyzer", result.SelectedTools[0].Name)
}

func TestParseSelection_AllUnknownToolsFails(t *testing.T) {
	available := []tool.Tool{makeTool("sleep_analyzer", tool.ToolTypeSleepPatternAnalyzer)}

	text := `{"selected_tools": [{"tool_name": "ghost_tool", "relevance_score": 0.9}]}`

	_, err := parseSelection(text, available, 3)
	assert.Error(t, err)
}

func TestParseSelection_MissingSelectedTools(t *testing.T) {
	_, err := parseSelection(`{"reasoning": "noop"}`, nil, 3)
	assert.Error(t, err)
}

func TestParseSelection_CapsAtMaxTools(t *testing.T) {
	available := []tool.Tool{
		makeTool("a", tool.ToolTypeActivityAnalyzer),
		makeTool("b", tool.ToolTypeSleepPatternAnalyzer),
		makeTool("c", tool.ToolTypeFeedingTracker),
	}

	text := `{
		"selected_tools": [
			{"tool_name": "a", "relevance_score": 0.9},
			{"tool_name": "b", "relevance_score": 0.8},
			{"tool_name": "c", "relevance_score": 0.7}
		]
	}`

	result, err := parseSelection(text, available, 2)
	require.NoError(t, err)
	assert.Len(t, result.SelectedTools, 2)
}

func TestParseSelection_ClampsScores(t *testing.T) {
	available := []tool.Tool{makeTool("a", tool.ToolTypeActivityAnalyzer)}

	text := `{
		"selected_tools": [{"tool_name": "a", "relevance_score": 3.5}],
		"confidence": -2
	}`

	result, err := parseSelection(text, available, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.ToolInfo[0].RelevanceScore)
	assert.Equal(t, 0.0, result.Confidence)
}
