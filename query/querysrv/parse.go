package querysrv

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Abraxas-365/nido/query"
	"github.com/Abraxas-365/nido/tool"
)

// extractJSON localiza el primer '{' y el último '}' del texto y parsea lo
// que hay entre ellos. Tolera prosa o markdown alrededor del objeto.
func extractJSON(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON in response: %w", err)
	}
	return parsed, nil
}

// parseSelection convierte la respuesta del LLM en un ToolSelectionResult,
// resolviendo cada tool_name contra la lista de tools activos.
func parseSelection(text string, available []tool.Tool, maxTools int) (*query.ToolSelectionResult, error) {
	parsed, err := extractJSON(text)
	if err != nil {
		return nil, err
	}

	rawSelected, ok := parsed["selected_tools"].([]any)
	if !ok {
		return nil, fmt.Errorf("selected_tools missing or not a list")
	}

	byName := make(map[string]tool.Tool, len(available))
	for _, t := range available {
		byName[strings.ToLower(t.Name)] = t
	}

	result := &query.ToolSelectionResult{
		Reasoning:  stringField(parsed, "reasoning"),
		Confidence: clamp01(floatField(parsed, "confidence")),
	}
	if classification := stringField(parsed, "query_classification"); classification != "" {
		result.QueryClassification = query.QueryType(classification)
	}
	if thinking := stringField(parsed, "thinking"); thinking != "" {
		result.ThinkingProcess = thinking
	}

	for _, raw := range rawSelected {
		if len(result.SelectedTools) >= maxTools {
			break
		}

		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		t, found := byName[strings.ToLower(stringField(entry, "tool_name"))]
		if !found {
			continue
		}

		result.SelectedTools = append(result.SelectedTools, t)
		result.ToolInfo = append(result.ToolInfo, query.ToolSelectionInfo{
			ToolID:          t.ID,
			ToolName:        t.Name,
			ToolType:        t.Type,
			RelevanceScore:  clamp01(floatField(entry, "relevance_score")),
			SelectionReason: stringField(entry, "selection_reason"),
		})
	}

	if len(result.SelectedTools) == 0 {
		return nil, fmt.Errorf("no known tools in selection response")
	}
	return result, nil
}

// parseParameters extrae el objeto de parámetros de la respuesta del LLM
func parseParameters(text string) (map[string]any, error) {
	return extractJSON(text)
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func floatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
