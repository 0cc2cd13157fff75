// Package xmlwire encodes and decodes the XML documents exchanged with the
// training registry.
//
// Request bodies always start with Declaration. Responses that carry lists
// arrive as ArrayOf<Type> documents and are read with UnmarshalList, which
// ignores the child element name.
package xmlwire
