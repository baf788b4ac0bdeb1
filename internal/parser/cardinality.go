package parser

import (
	"regexp"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// Mermaid cardinality markers. The left and right halves of a marker each
// describe one endpoint:
//
//	||  exactly one          |o  zero or one
//	}o  zero or more (left)  }|  one or more (left)
//	o{  zero or more (right) |{  one or more (right)
//
// The connector is "--" for identifying relationships and ".." for
// non-identifying ones.
var markerPattern = regexp.MustCompile(`^(\|\||\|o|\}o|\}\|)(--|\.\.)(\|\||o\||o\{|\|\{)$`)

// cardinality is one endpoint's multiplicity.
type cardinality int

const (
	cardinalityOne cardinality = iota
	cardinalityMany
)

// parsedMarker is a decoded relationship marker.
type parsedMarker struct {
	left       cardinality
	right      cardinality
	identifying bool
}

// parseMarker decodes a cardinality marker. ok is false for unrecognized
// markers, which callers treat as a warning and default to one-to-many.
func parseMarker(marker string) (parsedMarker, bool) {
	m := markerPattern.FindStringSubmatch(marker)
	if m == nil {
		return parsedMarker{}, false
	}

	var p parsedMarker
	switch m[1] {
	case "||", "|o":
		p.left = cardinalityOne
	case "}o", "}|":
		p.left = cardinalityMany
	}
	switch m[3] {
	case "||", "o|":
		p.right = cardinalityOne
	case "o{", "|{":
		p.right = cardinalityMany
	}
	p.identifying = m[2] == "--"
	return p, true
}

// kind normalizes the marker into exactly one relationship kind.
func (p parsedMarker) kind() mdv.RelationshipKind {
	switch {
	case p.left == cardinalityOne && p.right == cardinalityOne:
		return mdv.OneToOne
	case p.left == cardinalityMany && p.right == cardinalityMany:
		return mdv.ManyToMany
	default:
		return mdv.OneToMany
	}
}

// cascade maps the connector style to a delete behavior: identifying
// relationships cascade, non-identifying ones only remove the link.
func (p parsedMarker) cascade() mdv.CascadeBehavior {
	if p.identifying {
		return mdv.CascadeDelete
	}
	return mdv.CascadeRemoveLink
}

// canonicalMarker renders the normalized marker for a relationship, used
// when emitting corrected diagram lines.
func canonicalMarker(kind mdv.RelationshipKind, cascade mdv.CascadeBehavior) string {
	connector := "--"
	if cascade == mdv.CascadeRemoveLink {
		connector = ".."
	}
	switch kind {
	case mdv.OneToOne:
		return "||" + connector + "||"
	case mdv.ManyToMany:
		return "}o" + connector + "o{"
	default:
		return "||" + connector + "o{"
	}
}
