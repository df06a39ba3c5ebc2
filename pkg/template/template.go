// Package template provides placeholder rendering for notification and card
// templates configured on automation rules.
package template

import (
	"strings"

	"github.com/flowboard/flowboard/pkg/models"
)

// Render replaces every {key} placeholder in input with the stringified value
// of the same-named key in data. Placeholders without a matching key are left
// verbatim. Rendering is referentially transparent: the same input and data
// always produce the same output.
func Render(input string, data map[string]any) string {
	result := input

	for key, value := range data {
		placeholder := "{" + key + "}"
		if strings.Contains(result, placeholder) {
			result = strings.ReplaceAll(result, placeholder, models.Stringify(value))
		}
	}

	return result
}
