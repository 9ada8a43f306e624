// Package ai wires the configured categorization provider and the adapters around it
package ai

import (
	"context"
	"strings"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// keywordCategories maps a category to the words that put an item into it. Categories
// are checked in order, so more specific groups come first.
var keywordCategories = []struct {
	category string
	keywords []string
}{
	{"Frozen", []string{"frozen", "ice cream", "popsicle"}},
	{"Dairy", []string{"milk", "cheese", "butter", "yogurt", "yoghurt", "cream", "egg"}},
	{"Meat & Seafood", []string{"chicken", "beef", "pork", "lamb", "turkey", "bacon", "sausage", "ham", "fish", "salmon", "tuna", "shrimp", "prawn"}},
	{"Produce", []string{"apple", "banana", "orange", "lemon", "lime", "berry", "berries", "grape", "tomato", "potato", "onion", "garlic", "carrot", "lettuce", "spinach", "pepper", "cucumber", "broccoli", "avocado", "mushroom", "herb", "basil", "parsley", "cilantro"}},
	{"Grains & Pasta", []string{"rice", "pasta", "spaghetti", "noodle", "bread", "oat", "quinoa", "cereal", "tortilla", "couscous"}},
	{"Baking", []string{"flour", "sugar", "yeast", "baking", "cocoa", "vanilla", "chocolate chip"}},
	{"Canned Goods", []string{"canned", "beans", "chickpea", "lentil", "soup", "broth", "stock"}},
	{"Spices & Seasonings", []string{"salt", "cumin", "paprika", "cinnamon", "oregano", "thyme", "spice", "seasoning", "chili"}},
	{"Condiments & Sauces", []string{"sauce", "ketchup", "mustard", "mayo", "vinegar", "oil", "honey", "jam", "syrup", "dressing"}},
	{"Snacks", []string{"chips", "cracker", "cookie", "nuts", "popcorn", "pretzel", "chocolate"}},
	{"Beverages", []string{"juice", "coffee", "tea", "soda", "water", "wine", "beer"}},
}

// KeywordCategorizer assigns categories by keyword matching. It never calls out of
// process and serves as the offline provider.
type KeywordCategorizer struct{}

// NewKeywordCategorizer creates a keyword categorizer
func NewKeywordCategorizer() *KeywordCategorizer {
	return &KeywordCategorizer{}
}

var _ outbound.Categorizer = (*KeywordCategorizer)(nil)

// Name returns the provider name
func (k *KeywordCategorizer) Name() string {
	return "mock"
}

// Categorize assigns every item a category, falling back to "Other"
func (k *KeywordCategorizer) Categorize(ctx context.Context, items []string) ([]outbound.CategoryAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]outbound.CategoryAssignment, 0, len(items))
	for _, item := range items {
		out = append(out, outbound.CategoryAssignment{
			Ingredient: item,
			Category:   categoryFor(item),
		})
	}
	return out, nil
}

func categoryFor(item string) string {
	lower := strings.ToLower(item)
	for _, group := range keywordCategories {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.category
			}
		}
	}
	return "Other"
}
