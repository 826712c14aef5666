package services

import "strings"

// categorySearchFormat maps a lowercase category name to the ordered fields
// that make up its marketplace search term. "item_name" is the item title;
// any other field is looked up in the item's attributes.
var categorySearchFormat = map[string][]string{
	"smartphones and mobile": {"item_name", "storage"},
	"games consoles":         {"item_name", "storage", "colour"},
	"laptops":                {"item_name", "ram", "storage"},
}

// BuildSearchTerm assembles the search term for an item from its category's
// field format. Categories without a format use the item name alone.
func BuildSearchTerm(itemName, category string, attributes map[string]string) string {
	fields, ok := categorySearchFormat[strings.ToLower(category)]
	if !ok {
		fields = []string{"item_name"}
	}

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if field == "item_name" {
			parts = append(parts, itemName)
			continue
		}
		if v := attributes[field]; v != "" {
			parts = append(parts, v)
		}
	}

	return strings.Join(parts, " ")
}
