package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/ats-matcher/internal/models"
)

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON pulls the first JSON object out of free-form model output.
// A ```json fence is tried first, then the outermost brace span, then the whole text.
func ExtractJSON(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty model response")
	}

	var tiers []string
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		tiers = append(tiers, m[1])
	}
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		tiers = append(tiers, raw[start:end+1])
	}
	tiers = append(tiers, raw)

	var lastErr error
	for _, candidate := range tiers {
		var data map[string]any
		if err := json.Unmarshal([]byte(candidate), &data); err != nil {
			lastErr = err
			continue
		}
		if data == nil {
			lastErr = errors.New("response is not a JSON object")
			continue
		}
		return data, nil
	}

	return nil, fmt.Errorf("no JSON object found in model response: %w", lastErr)
}

// parseResult validates the decoded payload and converts it to a MatchResult.
func parseResult(data map[string]any) (*models.MatchResult, error) {
	overall, err := scoreField(data, "overallScore")
	if err != nil {
		return nil, err
	}

	rawCategories, ok := data["categoryScores"]
	if !ok || rawCategories == nil {
		return nil, errors.New("categoryScores is missing")
	}
	items, ok := rawCategories.([]any)
	if !ok {
		return nil, fmt.Errorf("categoryScores must be an array, got %T", rawCategories)
	}
	if len(items) == 0 {
		return nil, errors.New("categoryScores must not be empty")
	}

	categories := make([]models.CategoryScore, 0, len(items))
	for i, item := range items {
		cs, err := parseCategory(item)
		if err != nil {
			return nil, fmt.Errorf("categoryScores[%d]: %w", i, err)
		}
		categories = append(categories, cs)
	}

	return &models.MatchResult{
		OverallScore:   int(math.Round(overall)),
		CategoryScores: categories,
		Provenance:     models.ProvenanceAI,
	}, nil
}

func parseCategory(item any) (models.CategoryScore, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return models.CategoryScore{}, fmt.Errorf("expected object, got %T", item)
	}

	name, ok := obj["category"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return models.CategoryScore{}, errors.New("category must be a non-empty string")
	}

	score, err := scoreField(obj, "score")
	if err != nil {
		return models.CategoryScore{}, err
	}

	rawMatches, ok := obj["matches"].([]any)
	if !ok {
		return models.CategoryScore{}, errors.New("matches must be an array")
	}

	matches := make([]models.RequirementMatch, 0, len(rawMatches))
	for j, rm := range rawMatches {
		m, ok := rm.(map[string]any)
		if !ok {
			return models.CategoryScore{}, fmt.Errorf("matches[%d]: expected object, got %T", j, rm)
		}
		requirement, ok := m["requirement"].(string)
		if !ok {
			return models.CategoryScore{}, fmt.Errorf("matches[%d]: requirement must be a string", j)
		}
		matched, ok := coerceBool(m["matched"])
		if !ok {
			return models.CategoryScore{}, fmt.Errorf("matches[%d]: matched must be a boolean", j)
		}
		reason, _ := m["reason"].(string)
		matches = append(matches, models.RequirementMatch{
			Requirement: strings.TrimSpace(requirement),
			Matched:     matched,
			Reason:      strings.TrimSpace(reason),
		})
	}

	return models.CategoryScore{
		Category: models.Category(strings.TrimSpace(name)),
		Score:    score,
		Matches:  matches,
	}, nil
}

func scoreField(obj map[string]any, key string) (float64, error) {
	raw, ok := obj[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%s is missing", key)
	}
	value, ok := coerceFloat(raw)
	if !ok {
		return 0, fmt.Errorf("%s must be numeric, got %v", key, raw)
	}
	if value < 0 || value > 100 {
		return 0, fmt.Errorf("%s %v is out of range [0,100]", key, value)
	}
	return value, nil
}

func coerceFloat(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(val), "%"), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func coerceBool(v any) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

const notAssessedReason = "not assessed by the model"

// normalizeSkills rewrites the Skills category so it holds exactly one entry per job requirement, in job order.
func normalizeSkills(result *models.MatchResult, requirements []string) {
	for i := range result.CategoryScores {
		cs := &result.CategoryScores[i]
		if !cs.Category.Is(models.CategorySkills) {
			continue
		}

		normalized := make([]models.RequirementMatch, 0, len(requirements))
		for _, req := range requirements {
			entry := models.RequirementMatch{Requirement: req, Reason: notAssessedReason}
			for _, m := range cs.Matches {
				if strings.EqualFold(strings.TrimSpace(m.Requirement), strings.TrimSpace(req)) {
					entry.Matched = m.Matched
					entry.Reason = m.Reason
					break
				}
			}
			normalized = append(normalized, entry)
		}
		cs.Category = models.CategorySkills
		cs.Matches = normalized
		return
	}
}
