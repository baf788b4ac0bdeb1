package parser

import (
	"fmt"
	"strings"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// typeNames maps semantic types back to the Mermaid spelling used when
// rendering corrected diagrams.
var typeNames = map[mdv.AttributeType]string{
	mdv.AttributeTypeText:     "string",
	mdv.AttributeTypeMemo:     "memo",
	mdv.AttributeTypeInteger:  "int",
	mdv.AttributeTypeDecimal:  "decimal",
	mdv.AttributeTypeMoney:    "money",
	mdv.AttributeTypeDateTime: "datetime",
	mdv.AttributeTypeDate:     "date",
	mdv.AttributeTypeBoolean:  "boolean",
	mdv.AttributeTypeChoice:   "enum",
	mdv.AttributeTypeLookup:   "lookup",
}

// renderDiagram emits a normalized diagram from a parse result: canonical
// cardinality markers, normalized types, deduplicated declarations. The
// output re-parses without warnings, so callers can surface it back to the
// diagram author as the corrected version of their input.
func renderDiagram(result *mdv.ParseResult) string {
	var b strings.Builder
	b.WriteString("erDiagram\n")

	for _, rel := range result.Relationships {
		label := rel.Label
		if label == "" {
			label = "relates to"
		}
		fmt.Fprintf(&b, "    %s %s %s : %q\n",
			rel.From, canonicalMarker(rel.Kind, rel.Cascade), rel.To, label)
	}

	for _, entity := range result.Entities {
		fmt.Fprintf(&b, "    %s {\n", entity.Name)
		for _, attr := range entity.Attributes {
			fmt.Fprintf(&b, "        %s %s", typeNames[attr.Type], attr.Name)
			if attr.IsPrimaryKey || attr.Name == entity.PrimaryAttribute {
				b.WriteString(" PK")
			}
			if attr.IsForeignKey {
				b.WriteString(" FK")
			}
			if attr.Description != "" {
				fmt.Fprintf(&b, " %q", attr.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("    }\n")
	}

	return b.String()
}
