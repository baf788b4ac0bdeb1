// Package parser turns Mermaid erDiagram text into a typed
// entity/relationship graph.
//
// The parser is deliberately forgiving: recoverable syntax deviations
// (unknown attribute types, duplicate declarations, unrecognized cardinality
// markers, undeclared relationship endpoints) are recorded as validation
// warnings, most with a corrected form of the offending line, and parsing
// continues. A fatal *mdv.ParseError is returned only when the text cannot
// be tokenized into entities and relationships at all.
package parser
