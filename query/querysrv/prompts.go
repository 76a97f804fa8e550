package querysrv

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Abraxas-365/nido/tool"
)

// toolProfile describe un tipo de tool para el prompt de selección
type toolProfile struct {
	UseCases      []string
	SampleQueries []string
	DataTypes     []string
	Capabilities  []string
}

var toolProfiles = map[tool.ToolType]toolProfile{
	tool.ToolTypeActivityAnalyzer: {
		UseCases:      []string{"summarize recent activities", "answer 'what happened' questions", "list latest recorded events"},
		SampleQueries: []string{"What did my baby do today?", "Show me the last 10 activities"},
		DataTypes:     []string{"feeding", "sleep", "diaper", "health"},
		Capabilities:  []string{"chronological listing", "activity counts", "recency filters"},
	},
	tool.ToolTypeSleepPatternAnalyzer: {
		UseCases:      []string{"analyze sleep duration and quality", "detect nap patterns", "compare night vs day sleep"},
		SampleQueries: []string{"How did my baby sleep last night?", "Is my baby napping enough?"},
		DataTypes:     []string{"sleep"},
		Capabilities:  []string{"daily sleep totals", "nap detection", "sleep quality scoring"},
	},
	tool.ToolTypeFeedingTracker: {
		UseCases:      []string{"analyze feeding frequency and volume", "detect cluster feeding", "estimate nutrition intake"},
		SampleQueries: []string{"How much did my baby eat this week?", "Is my baby cluster feeding?"},
		DataTypes:     []string{"feeding", "pumping"},
		Capabilities:  []string{"volume/duration statistics", "cluster detection", "feeding efficiency", "nutrition estimates"},
	},
	tool.ToolTypeHealthMonitor: {
		UseCases:      []string{"review symptoms and temperature records", "track medication history"},
		SampleQueries: []string{"Has my baby had a fever recently?", "When was the last medication dose?"},
		DataTypes:     []string{"health", "medication"},
		Capabilities:  []string{"symptom history", "temperature tracking"},
	},
	tool.ToolTypeGrowthTracker: {
		UseCases:      []string{"track weight/height/head circumference over time"},
		SampleQueries: []string{"How is my baby growing?", "What was the last recorded weight?"},
		DataTypes:     []string{"growth"},
		Capabilities:  []string{"growth history", "measurement trends"},
	},
	tool.ToolTypeMilestoneTracker: {
		UseCases:      []string{"review developmental milestones reached"},
		SampleQueries: []string{"What milestones has my baby hit?"},
		DataTypes:     []string{"milestone"},
		Capabilities:  []string{"milestone history"},
	},
	tool.ToolTypeCareMetricsAnalyzer: {
		UseCases:      []string{"analyze caregiver participation", "show who did what share of care tasks"},
		SampleQueries: []string{"Who fed the baby most this week?", "How is care shared between us?"},
		DataTypes:     []string{"feeding", "sleep", "diaper"},
		Capabilities:  []string{"per-caregiver distribution", "participation metrics"},
	},
	tool.ToolTypeScheduleAssistant: {
		UseCases:      []string{"answer questions about upcoming events and routines"},
		SampleQueries: []string{"When is the next doctor appointment?", "What does today's schedule look like?"},
		DataTypes:     []string{"schedule"},
		Capabilities:  []string{"upcoming events", "routine summaries"},
	},
}

// mergeCapabilities combina las capabilities estáticas del tipo con las
// configuradas por admin en el tool, en orden estable
func mergeCapabilities(static []string, configured tool.JSONMap) []string {
	merged := append([]string{}, static...)

	keys := make([]string, 0, len(configured))
	for k := range configured {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := configured[k].(type) {
		case bool:
			if v {
				merged = append(merged, k)
			}
		case string:
			merged = append(merged, fmt.Sprintf("%s: %s", k, v))
		default:
			merged = append(merged, fmt.Sprintf("%s: %v", k, v))
		}
	}

	return merged
}

// buildSelectionPrompt arma el prompt de sistema para la selección de tools
func buildSelectionPrompt(available []tool.Tool, maxTools int, confidenceThreshold float64) string {
	var b strings.Builder

	b.WriteString("You are a tool-selection assistant for a baby-care tracking application. ")
	b.WriteString("Given a parent's natural language query, classify it and select the most relevant analysis tools.\n\n")
	b.WriteString("Available tools:\n")

	for _, t := range available {
		profile := toolProfiles[t.Type]
		fmt.Fprintf(&b, "- name: %q\n  type: %s\n  description: %s\n", t.Name, t.Type, t.Description)
		if len(profile.UseCases) > 0 {
			fmt.Fprintf(&b, "  use_cases: %s\n", strings.Join(profile.UseCases, "; "))
		}
		if len(profile.SampleQueries) > 0 {
			fmt.Fprintf(&b, "  sample_queries: %s\n", strings.Join(profile.SampleQueries, " | "))
		}
		if len(profile.DataTypes) > 0 {
			fmt.Fprintf(&b, "  data_types: %s\n", strings.Join(profile.DataTypes, ", "))
		}
		if caps := mergeCapabilities(profile.Capabilities, t.Capabilities); len(caps) > 0 {
			fmt.Fprintf(&b, "  capabilities: %s\n", strings.Join(caps, ", "))
		}
	}

	b.WriteString("\nQuery classifications: activity_inquiry, sleep_analysis, care_metrics, health_check, schedule_query, general_question, comparative_analysis.\n\n")
	fmt.Fprintf(&b, "Select at most %d tools. Only include a tool if its relevance score is at least %.2f.\n\n", maxTools, confidenceThreshold)
	b.WriteString("Respond with a single JSON object and nothing else:\n")
	b.WriteString(`{
  "query_classification": "<one of the classifications>",
  "selected_tools": [
    {"tool_name": "<exact tool name>", "relevance_score": <0.0-1.0>, "selection_reason": "<short reason>"}
  ],
  "reasoning": "<overall reasoning>",
  "confidence": <0.0-1.0>,
  "thinking": "<optional step-by-step analysis>"
}`)

	return b.String()
}

// buildExtractionPrompt arma el prompt para extraer parámetros de un tool
func buildExtractionPrompt(toolType tool.ToolType) string {
	var b strings.Builder

	b.WriteString("Extract structured parameters from the parent's query for a baby-care analysis tool. ")
	fmt.Fprintf(&b, "Tool type: %s.\n\n", toolType)
	b.WriteString("Respond with a single minimal JSON object and nothing else. Recognized keys:\n")
	b.WriteString("- \"timeframe\": number of days to analyze (integer)\n")
	b.WriteString("- \"include_details\": whether per-baby detail is wanted (boolean)\n")

	switch toolType {
	case tool.ToolTypeActivityAnalyzer:
		b.WriteString("- \"limit\": maximum number of activities to return (integer)\n")
	case tool.ToolTypeFeedingTracker:
		b.WriteString("- \"feeding_types_filter\": list of feeding types mentioned, or [\"all\"]\n")
		b.WriteString("- \"time_of_day_filter\": one of all, morning, afternoon, evening, night\n")
	case tool.ToolTypeSleepPatternAnalyzer:
		b.WriteString("- \"metrics\": list among total_sleep, night_sleep, naps, quality\n")
		b.WriteString("- \"calculation_method\": PSQI or custom, only when quality is requested\n")
	}

	b.WriteString("\nOmit any key the query does not imply.")
	return b.String()
}
