package params

import (
	"fmt"
	"strings"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// ParseKeyValuePairs converts a slice of "key=value" strings into a map.
//
// Example:
//
//	params, err := ParseKeyValuePairs([]string{"tier=Gold,Silver", "status=Open,Closed"})
//	// Returns: map[string]string{"tier": "Gold,Silver", "status": "Open,Closed"}
func ParseKeyValuePairs(pairs []string) (map[string]string, error) {
	result := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("parameter %q is not in key=value format (example: --choice-set tier=Gold,Silver)", pair)
		}

		if key == "" {
			return nil, fmt.Errorf("parameter has empty key: %q", pair)
		}

		result[key] = value
	}

	return result, nil
}

// ParseChoiceSets converts "name=Label1,Label2,..." flag values into global
// choice sets, assigning sequential option values from the conventional
// base. Duplicate set names are rejected; pair order is preserved.
func ParseChoiceSets(pairs []string) ([]mdv.ChoiceSet, error) {
	seen := make(map[string]bool, len(pairs))
	sets := make([]mdv.ChoiceSet, 0, len(pairs))

	for _, pair := range pairs {
		name, labels, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("choice set %q is not in name=Label1,Label2 format", pair)
		}
		if seen[name] {
			return nil, fmt.Errorf("choice set %q declared more than once", name)
		}
		seen[name] = true

		var options []mdv.ChoiceOption
		for _, label := range strings.Split(labels, ",") {
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}
			options = append(options, mdv.ChoiceOption{
				Label: label,
				Value: mdv.ChoiceValueBase + len(options),
			})
		}
		if len(options) == 0 {
			return nil, fmt.Errorf("choice set %q has no options", name)
		}

		sets = append(sets, mdv.ChoiceSet{Name: name, Options: options, Global: true})
	}

	return sets, nil
}
