// Package filter compiles --filter expressions for the list commands.
//
// Expressions use the expr language (https://expr-lang.org) and are checked
// against the variables of the record kind they filter. For example:
//
//	nodeType == "Organization" and icontains(name, "acme")
//	requirementCount > 3 and not hasRequirement(42)
//	not sunset and culture == "en-US"
package filter
