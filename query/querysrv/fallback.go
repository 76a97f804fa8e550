package querysrv

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Abraxas-365/nido/query"
	"github.com/Abraxas-365/nido/tool"
)

// toolKeywords palabras clave por tipo de tool para la selección de respaldo
// cuando el LLM falla o responde algo no parseable.
var toolKeywords = map[tool.ToolType][]string{
	tool.ToolTypeActivityAnalyzer:     {"activity", "activities", "recent", "what did", "what happened"},
	tool.ToolTypeSleepPatternAnalyzer: {"sleep", "sleeping", "nap", "rest", "bedtime"},
	tool.ToolTypeCareMetricsAnalyzer:  {"care", "caregiver", "who", "participation", "sharing"},
	tool.ToolTypeScheduleAssistant:    {"schedule", "upcoming", "events", "appointments", "when"},
	tool.ToolTypeFeedingTracker:       {"feed", "feeding", "eat", "bottle", "breast", "formula", "milk"},
	tool.ToolTypeHealthMonitor:        {"fever", "sick", "symptom", "temperature", "medication", "medicine"},
	tool.ToolTypeGrowthTracker:        {"weight", "height", "growth", "growing", "percentile"},
	tool.ToolTypeMilestoneTracker:     {"milestone", "milestones", "development", "first"},
}

// classificationByToolType clasificación de consulta inferida del tool dominante
var classificationByToolType = map[tool.ToolType]query.QueryType{
	tool.ToolTypeActivityAnalyzer:     query.QueryTypeActivityInquiry,
	tool.ToolTypeSleepPatternAnalyzer: query.QueryTypeSleepAnalysis,
	tool.ToolTypeCareMetricsAnalyzer:  query.QueryTypeCareMetrics,
	tool.ToolTypeHealthMonitor:        query.QueryTypeHealthCheck,
	tool.ToolTypeScheduleAssistant:    query.QueryTypeScheduleQuery,
}

// fallbackSelection selecciona tools por coincidencia de palabras clave.
// Con al menos un tool disponible nunca devuelve una selección vacía.
func fallbackSelection(queryText string, available []tool.Tool, maxTools int) *query.ToolSelectionResult {
	queryLower := strings.ToLower(queryText)

	type scored struct {
		t    tool.Tool
		hits int
		pos  int
	}

	var matches []scored
	for i, t := range available {
		hits := 0
		for _, keyword := range toolKeywords[t.Type] {
			if strings.Contains(queryLower, keyword) {
				hits++
			}
		}
		if hits > 0 {
			matches = append(matches, scored{t: t, hits: hits, pos: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].hits != matches[j].hits {
			return matches[i].hits > matches[j].hits
		}
		return matches[i].pos < matches[j].pos
	})

	result := &query.ToolSelectionResult{
		FallbackUsed: true,
	}

	if len(matches) > 0 {
		if len(matches) > maxTools {
			matches = matches[:maxTools]
		}
		for _, m := range matches {
			result.SelectedTools = append(result.SelectedTools, m.t)
			result.ToolInfo = append(result.ToolInfo, query.ToolSelectionInfo{
				ToolID:          m.t.ID,
				ToolName:        m.t.Name,
				ToolType:        m.t.Type,
				RelevanceScore:  keywordScore(m.hits),
				SelectionReason: fmt.Sprintf("keyword match (%d hits)", m.hits),
			})
		}
		result.Confidence = 0.6
		result.Reasoning = "Selected by keyword matching after LLM selection was unavailable"
		if classification, ok := classificationByToolType[matches[0].t.Type]; ok {
			result.QueryClassification = classification
		} else {
			result.QueryClassification = query.QueryTypeGeneralQuestion
		}
		return result
	}

	// Sin coincidencias: piso de respaldo con el analizador de actividad,
	// o el primer tool disponible si ese tipo no existe.
	chosen := available[0]
	for _, t := range available {
		if t.Type == tool.ToolTypeActivityAnalyzer {
			chosen = t
			break
		}
	}

	result.SelectedTools = []tool.Tool{chosen}
	result.ToolInfo = []query.ToolSelectionInfo{{
		ToolID:          chosen.ID,
		ToolName:        chosen.Name,
		ToolType:        chosen.Type,
		RelevanceScore:  0.5,
		SelectionReason: "default selection, no keywords matched",
	}}
	result.Confidence = 0.5
	result.Reasoning = "No keywords matched; defaulted to the general activity analyzer"
	result.QueryClassification = query.QueryTypeGeneralQuestion
	return result
}

func keywordScore(hits int) float64 {
	score := 0.5 + 0.1*float64(hits)
	if score > 0.9 {
		score = 0.9
	}
	return score
}

// fallbackParameters devuelve los parámetros por defecto de un tipo de tool
// cuando la extracción vía LLM falla.
func fallbackParameters(toolType tool.ToolType) map[string]any {
	switch toolType {
	case tool.ToolTypeFeedingTracker, tool.ToolTypeActivityAnalyzer:
		return map[string]any{
			"limit":     20,
			"timeframe": "today",
		}
	case tool.ToolTypeSleepPatternAnalyzer:
		return map[string]any{
			"timeframe":       7,
			"include_details": true,
		}
	default:
		return map[string]any{
			"timeframe": 7,
		}
	}
}

// tagParameters anota el origen de los parámetros para observabilidad
func tagParameters(params map[string]any, method string) map[string]any {
	if params == nil {
		params = map[string]any{}
	}
	params["extraction_method"] = method
	params["extracted_at"] = time.Now().UTC().Format(time.RFC3339)
	return params
}
