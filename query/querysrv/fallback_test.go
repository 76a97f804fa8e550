package querysrv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraxas-365/nido/pkg/kernel"
	"github.com/Abraxas-365/nido/query"
	"github.com/Abraxas-365/nido/tool"
)

func makeTool(id string, toolType tool.ToolType) tool.Tool {
	return tool.Tool{
		ID:     kernel.NewToolID(id),
		Name:   id,
		Type:   toolType,
		Status: tool.ToolStatusActive,
	}
}

func TestFallbackSelection_KeywordMatch(t *testing.T) {
	available := []tool.Tool{
		makeTool("activity", tool.ToolTypeActivityAnalyzer),
		makeTool("sleep", tool.ToolTypeSleepPatternAnalyzer),
		makeTool("feeding", tool.ToolTypeFeedingTracker),
	}

	result := fallbackSelection("How did my baby sleep last night?", available, 3)

	require.Len(t, result.SelectedTools, 1)
	assert.Equal(t, tool.ToolTypeSleepPatternAnalyzer, result.SelectedTools[0].Type)
	assert.True(t, result.FallbackUsed)
	assert.Equal(t, 0.6, result.Confidence)
	assert.Equal(t, query.QueryTypeSleepAnalysis, result.QueryClassification)

	require.Len(t, result.ToolInfo, 1)
	assert.Equal(t, "sleep", result.ToolInfo[0].ToolName)
	assert.Contains(t, result.ToolInfo[0].SelectionReason, "keyword match")
}

func TestFallbackSelection_OrdersByHitCount(t *testing.T) {
	available := []tool.Tool{
		makeTool("sleep", tool.ToolTypeSleepPatternAnalyzer),
		makeTool("feeding", tool.ToolTypeFeedingTracker),
	}

	// "feeding" y "bottle" y "milk" golpean feeding; "sleep" una sola vez.
	result := fallbackSelection("is the bottle feeding of milk affecting sleep?", available, 2)

	require.Len(t, result.ToolInfo, 2)
	assert.Equal(t, tool.ToolTypeFeedingTracker, result.ToolInfo[0].ToolType)
	assert.Equal(t, tool.ToolTypeSleepPatternAnalyzer, result.ToolInfo[1].ToolType)
	assert.Greater(t, result.ToolInfo[0].RelevanceScore, result.ToolInfo[1].RelevanceScore)
}

func TestFallbackSelection_RespectsMaxTools(t *testing.T) {
	available := []tool.Tool{
		makeTool("sleep", tool.ToolTypeSleepPatternAnalyzer),
		makeTool("feeding", tool.ToolTypeFeedingTracker),
		makeTool("health", tool.ToolTypeHealthMonitor),
	}

	result := fallbackSelection("sleep feeding fever", available, 2)
	assert.Len(t, result.SelectedTools, 2)
	assert.Len(t, result.ToolInfo, 2)
}

func TestFallbackSelection_NoMatchesDefaultsToActivityAnalyzer(t *testing.T) {
	available := []tool.Tool{
		makeTool("sleep", tool.ToolTypeSleepPatternAnalyzer),
		makeTool("activity", tool.ToolTypeActivityAnalyzer),
	}

	result := fallbackSelection("tell me something interesting", available, 3)

	require.Len(t, result.SelectedTools, 1)
	assert.Equal(t, tool.ToolTypeActivityAnalyzer, result.SelectedTools[0].Type)
	assert.Equal(t, 0.5, result.Confidence)
	assert.Equal(t, 0.5, result.ToolInfo[0].RelevanceScore)
	assert.Equal(t, query.QueryTypeGeneralQuestion, result.QueryClassification)
	assert.True(t, result.FallbackUsed)
}

func TestFallbackSelection_NoMatchesWithoutActivityAnalyzer(t *testing.T) {
	available := []tool.Tool{
		makeTool("growth", tool.ToolTypeGrowthTracker),
		makeTool("sleep", tool.ToolTypeSleepPatternAnalyzer),
	}

	result := fallbackSelection("tell me something interesting", available, 3)

	// Sin analizador de actividad se usa el primer tool disponible.
	require.Len(t, result.SelectedTools, 1)
	assert.Equal(t, tool.ToolTypeGrowthTracker, result.SelectedTools[0].Type)
}

func TestFallbackSelection_NeverEmptyWithAvailableTools(t *testing.T) {
	available := []tool.Tool{makeTool("care", tool.ToolTypeCareMetricsAnalyzer)}

	queries := []string{
		"",
		"who took care of the baby?",
		"random words zzz qqq",
		"SLEEP IN UPPERCASE",
	}
	for _, q := range queries {
		result := fallbackSelection(q, available, 3)
		assert.NotEmpty(t, result.SelectedTools, "query %q", q)
		assert.True(t, result.FallbackUsed)
	}
}

func TestKeywordScore_CappedAtPointNine(t *testing.T) {
	assert.InDelta(t, 0.6, keywordScore(1), 1e-9)
	assert.InDelta(t, 0.8, keywordScore(3), 1e-9)
	assert.Equal(t, 0.9, keywordScore(7))
}

func TestFallbackParameters_ByToolType(t *testing.T) {
	feeding := fallbackParameters(tool.ToolTypeFeedingTracker)
	assert.Equal(t, 20, feeding["limit"])
	assert.Equal(t, "today", feeding["timeframe"])

	activity := fallbackParameters(tool.ToolTypeActivityAnalyzer)
	assert.Equal(t, 20, activity["limit"])

	sleep := fallbackParameters(tool.ToolTypeSleepPatternAnalyzer)
	assert.Equal(t, 7, sleep["timeframe"])
	assert.Equal(t, true, sleep["include_details"])

	other := fallbackParameters(tool.ToolTypeGrowthTracker)
	assert.Equal(t, 7, other["timeframe"])
	assert.NotContains(t, other, "limit")
}

func TestTagParameters(t *testing.T) {
	params := tagParameters(map[string]any{"timeframe": 7}, "fallback_default")
	assert.Equal(t, "fallback_default", params["extraction_method"])
	assert.NotEmpty(t, params["extracted_at"])
	assert.Equal(t, 7, params["timeframe"])

	// Un mapa nil no revienta.
	params = tagParameters(nil, "llm")
	assert.Equal(t, "llm", params["extraction_method"])
}
