package planner

import (
	"strings"
	"unicode"
)

// Target-store naming rules: logical names are lowercase
// <prefix>_<sanitized name>; schema names keep the author's casing after the
// prefix. Sanitizing strips everything but letters, digits and underscores.

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LogicalName builds the lowercase logical name for a schema object. The
// executor uses it to derive the primary column name from an entity's
// primary attribute.
func LogicalName(prefix, name string) string {
	return prefix + "_" + strings.ToLower(sanitize(name))
}

func logicalName(prefix, name string) string {
	return LogicalName(prefix, name)
}

// schemaName builds the cased schema name for a schema object.
func schemaName(prefix, name string) string {
	return prefix + "_" + sanitize(name)
}

// lookupName builds the logical name of the lookup column backing a
// one-to-many relationship, named after the referenced entity.
func lookupName(prefix, referencedEntity string) string {
	return prefix + "_" + strings.ToLower(sanitize(referencedEntity)) + "id"
}

// relationshipName builds the unique schema name of a relationship from its
// endpoint diagram names, referencing side first.
func relationshipName(prefix, referencing, referenced string) string {
	return prefix + "_" + strings.ToLower(sanitize(referencing)) + "_" + strings.ToLower(sanitize(referenced))
}
