// Package schema decodes tool PARAM payloads into an ordered Node tree.
//
// A PARAM payload mixes structure and display metadata: nested objects become
// groups, arrays stay opaque, and primitives (optionally wrapped as
// {"type": "CHAR", "value": "x"}) become scalar leaves. String "type" entries
// tag their enclosing group and are not fields themselves. Key order follows
// the payload so generated forms list fields the way the backend declared
// them.
package schema
