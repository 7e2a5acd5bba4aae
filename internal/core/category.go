package core

import "strings"

// Category is the closed set of spending categories. The values are stable
// identifiers used in storage and JSON; the Vietnamese display labels live in
// a separate lookup and are what the AI model sees and returns.
type Category string

const (
	CategoryFood     Category = "food"
	CategoryHangOut  Category = "hang_out"
	CategoryShopping Category = "shopping"
	CategoryOther    Category = "other"
)

var categoryLabels = map[Category]string{
	CategoryFood:     "Ăn uống hằng ngày",
	CategoryHangOut:  "Đi chơi",
	CategoryShopping: "Mua sắm",
	CategoryOther:    "Khác",
}

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{CategoryFood, CategoryHangOut, CategoryShopping, CategoryOther}
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display label for the category. Unknown categories fall
// back to the label of CategoryOther.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return categoryLabels[CategoryOther]
}

// CategoryFromLabel maps a display label or a raw category value back to a
// Category. The second return value reports whether the input was recognized.
func CategoryFromLabel(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for c, label := range categoryLabels {
		if s == label || s == string(c) {
			return c, true
		}
	}
	return CategoryOther, false
}

// Substrings that force a clause into CategoryHangOut no matter what the
// model proposed. Matched case-insensitively against the raw clause text.
var hangOutMarkers = []string{"cafe", "ăn phố"}

// ResolveCategory applies the deterministic post-filter on top of the model
// output: clauses mentioning a hang-out marker are always CategoryHangOut,
// unrecognized proposals fall back to CategoryOther, anything else passes
// through. clause is the original user text segment, not the model's
// description.
func ResolveCategory(clause, proposed string) Category {
	lower := strings.ToLower(clause)
	for _, marker := range hangOutMarkers {
		if strings.Contains(lower, marker) {
			return CategoryHangOut
		}
	}
	c, ok := CategoryFromLabel(proposed)
	if !ok {
		return CategoryOther
	}
	return c
}
