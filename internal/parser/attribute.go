package parser

import (
	"regexp"
	"strings"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// attributePattern matches one attribute line inside an entity block:
//
//	<type> <name> [PK|FK|UK ...] ["description"]
var attributePattern = regexp.MustCompile(
	`^(\w[\w()]*)\s+(\w[\w-]*)((?:\s+(?:PK|FK|UK))*)\s*(?:"([^"]*)")?$`)

// typeAliases maps the loosely-typed Mermaid attribute types onto the
// normalized semantic types. Authors write whatever their source tool
// emitted, so the table is generous.
var typeAliases = map[string]mdv.AttributeType{
	"string":    mdv.AttributeTypeText,
	"text":      mdv.AttributeTypeText,
	"varchar":   mdv.AttributeTypeText,
	"char":      mdv.AttributeTypeText,
	"guid":      mdv.AttributeTypeText,
	"uuid":      mdv.AttributeTypeText,
	"memo":      mdv.AttributeTypeMemo,
	"longtext":  mdv.AttributeTypeMemo,
	"int":       mdv.AttributeTypeInteger,
	"integer":   mdv.AttributeTypeInteger,
	"bigint":    mdv.AttributeTypeInteger,
	"number":    mdv.AttributeTypeDecimal,
	"decimal":   mdv.AttributeTypeDecimal,
	"numeric":   mdv.AttributeTypeDecimal,
	"float":     mdv.AttributeTypeDecimal,
	"double":    mdv.AttributeTypeDecimal,
	"money":     mdv.AttributeTypeMoney,
	"currency":  mdv.AttributeTypeMoney,
	"datetime":  mdv.AttributeTypeDateTime,
	"timestamp": mdv.AttributeTypeDateTime,
	"date":      mdv.AttributeTypeDate,
	"bool":      mdv.AttributeTypeBoolean,
	"boolean":   mdv.AttributeTypeBoolean,
	"enum":      mdv.AttributeTypeChoice,
	"choice":    mdv.AttributeTypeChoice,
	"picklist":  mdv.AttributeTypeChoice,
	"lookup":    mdv.AttributeTypeLookup,
	"reference": mdv.AttributeTypeLookup,
}

// normalizeType maps a raw diagram type to a semantic type. ok is false for
// unknown types, which callers record as a warning before falling back to
// text. Parenthesized size suffixes like varchar(100) are ignored.
func normalizeType(raw string) (mdv.AttributeType, bool) {
	base := strings.ToLower(raw)
	if idx := strings.IndexByte(base, '('); idx > 0 {
		base = base[:idx]
	}
	t, ok := typeAliases[base]
	return t, ok
}

// parseAttributeLine parses one attribute line. ok is false when the line
// does not look like an attribute at all.
func parseAttributeLine(line string) (attr mdv.Attribute, rawType string, ok bool) {
	m := attributePattern.FindStringSubmatch(line)
	if m == nil {
		return mdv.Attribute{}, "", false
	}

	rawType = m[1]
	attr.Name = m[2]
	attr.Description = m[4]

	keys := strings.Fields(m[3])
	for _, k := range keys {
		switch k {
		case "PK":
			attr.IsPrimaryKey = true
			attr.Required = true
		case "FK":
			attr.IsForeignKey = true
		}
	}

	t, known := normalizeType(rawType)
	if !known {
		t = mdv.AttributeTypeText
	}
	attr.Type = t

	// Choice attributes reference a choice set named after the attribute;
	// the option values are supplied at deployment time.
	if attr.Type == mdv.AttributeTypeChoice {
		attr.ChoiceSet = strings.ToLower(attr.Name)
	}

	return attr, rawType, true
}
