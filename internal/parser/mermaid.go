package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

var (
	entityStartPattern  = regexp.MustCompile(`^(\w[\w-]*)\s*\{$`)
	relationshipPattern = regexp.MustCompile(`^(\w[\w-]*)\s+(\S+)\s+(\w[\w-]*)\s*:\s*(.+)$`)
	bareEntityPattern   = regexp.MustCompile(`^\w[\w-]*$`)
)

// MermaidParser implements mdv.Parser for the Mermaid erDiagram DSL.
// The zero value is not usable; create instances with New.
type MermaidParser struct {
	logger mdv.Logger
}

// New creates a MermaidParser. Panics if logger is nil; pass a NullLogger
// to discard diagnostics.
func New(logger mdv.Logger) *MermaidParser {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &MermaidParser{logger: logger}
}

// parseState accumulates the parse while walking the input lines.
type parseState struct {
	entities      []mdv.Entity
	entityIndex   map[string]int
	relationships []mdv.Relationship
	relationKeys  map[string]bool
	warnings      []mdv.ValidationWarning

	// implicit marks entities created from a relationship endpoint before
	// (or without) an explicit declaration. A later entity block claims the
	// name silently; Mermaid diagrams routinely declare relationships first.
	implicit map[string]bool

	// currentEntity is the index into entities while inside a block, -1
	// outside.
	currentEntity int

	sawHeader bool
}

// Parse tokenizes diagram text into entities, attributes and relationships.
//
// Recoverable deviations become warnings; only input that cannot be
// tokenized at all yields a fatal *mdv.ParseError.
func (p *MermaidParser) Parse(text string) (*mdv.ParseResult, error) {
	st := &parseState{
		entityIndex:   make(map[string]int),
		relationKeys:  make(map[string]bool),
		implicit:      make(map[string]bool),
		currentEntity: -1,
	}

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}

		if !st.sawHeader {
			if strings.Contains(line, "erDiagram") {
				st.sawHeader = true
				continue
			}
			return nil, &mdv.ParseError{Line: lineNo, Msg: fmt.Sprintf(
				"expected erDiagram header before %q", line)}
		}

		if st.currentEntity >= 0 {
			p.parseBlockLine(st, lineNo, line)
			continue
		}

		p.parseTopLevelLine(st, lineNo, line)
	}

	if st.currentEntity >= 0 {
		st.warn(len(lines), "entity %q block is never closed", st.entities[st.currentEntity].Name)
	}

	if len(st.entities) == 0 && len(st.relationships) == 0 {
		return nil, &mdv.ParseError{Msg: "no entities or relationships found"}
	}

	p.ensurePrimaryAttributes(st)

	result := &mdv.ParseResult{
		Entities:      st.entities,
		Relationships: st.relationships,
		Warnings:      st.warnings,
		Validation: mdv.ValidationResult{
			IsValid:           true,
			EntityCount:       len(st.entities),
			RelationshipCount: len(st.relationships),
		},
	}

	if len(st.warnings) > 0 {
		result.CorrectedDiagram = renderDiagram(result)
		p.logger.Verbose("parsed diagram with %d warning(s)", len(st.warnings))
	}

	return result, nil
}

// parseTopLevelLine handles lines outside entity blocks: block openers and
// relationship declarations.
func (p *MermaidParser) parseTopLevelLine(st *parseState, lineNo int, line string) {
	if m := entityStartPattern.FindStringSubmatch(line); m != nil {
		name := m[1]
		if idx, exists := st.entityIndex[name]; exists {
			if !st.implicit[name] {
				st.warn(lineNo, "entity %q declared more than once; merging attribute blocks", name)
			}
			st.implicit[name] = false
			st.currentEntity = idx
			return
		}
		st.currentEntity = st.addEntity(name)
		return
	}

	if m := relationshipPattern.FindStringSubmatch(line); m != nil {
		p.parseRelationshipLine(st, lineNo, m)
		return
	}

	// A bare entity name declares an entity without attributes.
	if bareEntityPattern.MatchString(line) {
		if _, exists := st.entityIndex[line]; !exists {
			st.addEntity(line)
		}
		st.implicit[line] = false
		return
	}

	st.warn(lineNo, "unrecognized line %q ignored", line)
}

// parseBlockLine handles lines inside an entity block.
func (p *MermaidParser) parseBlockLine(st *parseState, lineNo int, line string) {
	if line == "}" {
		st.currentEntity = -1
		return
	}

	entity := &st.entities[st.currentEntity]

	attr, rawType, ok := parseAttributeLine(line)
	if !ok {
		st.warn(lineNo, "unrecognized attribute line %q in entity %q ignored", line, entity.Name)
		return
	}

	if _, known := normalizeType(rawType); !known {
		st.warnf(lineNo,
			fmt.Sprintf("unknown attribute type %q on %s.%s; defaulting to text", rawType, entity.Name, attr.Name),
			fmt.Sprintf("string %s", attr.Name))
	}

	if _, dup := entity.Attribute(attr.Name); dup {
		st.warn(lineNo, "duplicate attribute %q on entity %q ignored", attr.Name, entity.Name)
		return
	}

	entity.Attributes = append(entity.Attributes, attr)
}

// parseRelationshipLine handles one relationship declaration.
func (p *MermaidParser) parseRelationshipLine(st *parseState, lineNo int, m []string) {
	left, marker, right, label := m[1], m[2], m[3], strings.Trim(strings.TrimSpace(m[4]), `"`)

	pm, ok := parseMarker(marker)
	if !ok {
		pm = parsedMarker{left: cardinalityOne, right: cardinalityMany, identifying: true}
		st.warnf(lineNo,
			fmt.Sprintf("unrecognized cardinality marker %q; defaulting to one-to-many", marker),
			fmt.Sprintf("%s ||--o{ %s : %s", left, right, label))
	}

	// Endpoints must exist in the parse result. Create implicit entities
	// for names not declared yet; a later block claims them, and entities
	// left without attributes are flagged at the end of the parse.
	for _, name := range []string{left, right} {
		if _, exists := st.entityIndex[name]; !exists {
			st.addEntity(name)
			st.implicit[name] = true
		}
	}

	rel := mdv.Relationship{
		Kind:    pm.kind(),
		From:    left,
		To:      right,
		Label:   label,
		Cascade: pm.cascade(),
	}

	// One-to-many is always stored with the "one" side first.
	if pm.left == cardinalityMany && pm.right == cardinalityOne {
		rel.From, rel.To = right, left
	}

	key := fmt.Sprintf("%s|%s|%s", rel.From, rel.To, rel.Kind)
	if st.relationKeys[key] {
		st.warn(lineNo, "duplicate relationship %s %s %s ignored", rel.From, rel.Kind, rel.To)
		return
	}
	st.relationKeys[key] = true

	st.relationships = append(st.relationships, rel)
}

// ensurePrimaryAttributes designates a primary attribute for every entity,
// synthesizing a name attribute where the diagram declares none.
func (p *MermaidParser) ensurePrimaryAttributes(st *parseState) {
	for i := range st.entities {
		entity := &st.entities[i]

		if len(entity.Attributes) == 0 {
			st.warn(0, "entity %q has no attributes; adding a name attribute", entity.Name)
			entity.Attributes = []mdv.Attribute{defaultNameAttribute()}
			entity.PrimaryAttribute = entity.Attributes[0].Name
			continue
		}

		primary := ""
		for _, a := range entity.Attributes {
			if a.IsPrimaryKey {
				primary = a.Name
				break
			}
		}
		if primary == "" {
			// Fall back to the first text attribute, then the first
			// attribute outright.
			for _, a := range entity.Attributes {
				if a.Type == mdv.AttributeTypeText {
					primary = a.Name
					break
				}
			}
			if primary == "" {
				primary = entity.Attributes[0].Name
			}
			st.warn(0, "entity %q has no PK attribute; using %q as primary attribute", entity.Name, primary)
		}
		entity.PrimaryAttribute = primary
	}
}

func defaultNameAttribute() mdv.Attribute {
	return mdv.Attribute{
		Name:         "name",
		Type:         mdv.AttributeTypeText,
		Required:     true,
		IsPrimaryKey: true,
	}
}

func (st *parseState) addEntity(name string) int {
	st.entities = append(st.entities, mdv.Entity{Name: name})
	idx := len(st.entities) - 1
	st.entityIndex[name] = idx
	return idx
}

func (st *parseState) warn(line int, format string, args ...interface{}) {
	st.warnings = append(st.warnings, mdv.ValidationWarning{
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	})
}

func (st *parseState) warnf(line int, message, suggestion string) {
	st.warnings = append(st.warnings, mdv.ValidationWarning{
		Line:       line,
		Message:    message,
		Suggestion: suggestion,
	})
}

var _ mdv.Parser = (*MermaidParser)(nil)
