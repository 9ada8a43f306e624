// Package prompt builds the categorization prompt shared by every provider and parses
// the model's reply back into category assignments
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// SystemPrompt instructs the model to answer with a bare JSON array
const SystemPrompt = `You are a kitchen inventory assistant. You group pantry items into grocery categories.
Respond with a JSON array only. Each element must be an object with exactly two string fields:
"ingredient" (the item text exactly as given) and "category" (a short category name such as
"Produce", "Dairy", "Meat & Seafood", "Grains & Pasta", "Canned Goods", "Spices & Seasonings",
"Baking", "Condiments & Sauces", "Snacks", "Beverages", "Frozen" or "Other").
Do not include explanations or markdown.`

// UserPrompt lists the items to categorize, one per line
func UserPrompt(items []string) string {
	var b strings.Builder
	b.WriteString("Categorize these items:\n")
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}

// ParseAssignments extracts the assignment array from a model reply. Models sometimes
// wrap the array in prose, markdown fences or an object; the first JSON array found is
// used. Elements missing either field are skipped.
func ParseAssignments(reply string) ([]outbound.CategoryAssignment, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("empty response")
	}

	var wrapped map[string]json.RawMessage
	if strings.HasPrefix(reply, "{") && json.Unmarshal([]byte(reply), &wrapped) == nil {
		for _, value := range wrapped {
			if assignments, err := decodeArray(value); err == nil {
				return assignments, nil
			}
		}
	}

	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array found in response")
	}
	return decodeArray([]byte(reply[start : end+1]))
}

func decodeArray(raw []byte) ([]outbound.CategoryAssignment, error) {
	var items []outbound.CategoryAssignment
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	out := make([]outbound.CategoryAssignment, 0, len(items))
	for _, item := range items {
		item.Ingredient = strings.TrimSpace(item.Ingredient)
		item.Category = strings.TrimSpace(item.Category)
		if item.Ingredient == "" || item.Category == "" {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
