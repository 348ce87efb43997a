package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrInvalidSchema wraps decode failures for PARAM payloads.
var ErrInvalidSchema = errors.New("schema: invalid parameter schema")

const (
	// TypeKey carries the optional display-only type tag.
	TypeKey = "type"
	// ValueKey marks a wrapped scalar carrying an explicit value.
	ValueKey = "value"
	// NameKey is never used as a label source.
	NameKey = "name"
)

// Kind enumerates the node shapes a PARAM tree can hold.
type Kind int

const (
	// KindNone marks a missing or non-object schema.
	KindNone Kind = iota
	// KindScalar is a primitive, optionally unwrapped from {type, value}.
	KindScalar
	// KindArray is an ordered list; elements are never introspected.
	KindArray
	// KindGroup is a mapping from field name to child nodes.
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindGroup:
		return "group"
	default:
		return "none"
	}
}

// Node is one position in a parameter schema tree. Groups keep their children
// in the order the backend sent them.
type Node struct {
	Key      string
	Kind     Kind
	TypeTag  string
	Value    any
	Items    []any
	Children []Node
	// Wrapped is set for scalars decoded from {"type": ..., "value": ...}.
	Wrapped bool
}

// Empty reports whether the node renders as the "no parameters" placeholder.
func (n Node) Empty() bool {
	return n.Kind == KindNone
}

// Child returns the direct child with the supplied key.
func (n Node) Child(key string) (Node, bool) {
	for _, child := range n.Children {
		if child.Key == key {
			return child, true
		}
	}
	return Node{}, false
}

// Walk visits every node below n depth-first. The path holds the keys from
// the root (exclusive) down to the visited node (inclusive). Returning false
// from fn skips the node's children.
func (n Node) Walk(fn func(path []string, node Node) bool) {
	if fn == nil {
		return
	}
	walk(nil, n.Children, fn)
}

func walk(prefix []string, nodes []Node, fn func([]string, Node) bool) {
	for _, node := range nodes {
		path := append(append([]string(nil), prefix...), node.Key)
		if !fn(path, node) {
			continue
		}
		if node.Kind == KindGroup {
			walk(path, node.Children, fn)
		}
	}
}

// Parse decodes a PARAM payload into a Node tree. Empty input, null, and
// non-object roots produce a KindNone node without error.
func Parse(data []byte) (Node, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Node{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	value, err := decodeOrdered(dec)
	if err != nil {
		return Node{}, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Node{}, fmt.Errorf("%w: trailing data after document", ErrInvalidSchema)
	}

	obj, ok := value.(orderedObject)
	if !ok {
		return Node{}, nil
	}
	return Node{Kind: KindGroup, Children: childrenFromObject(obj)}, nil
}

// MustParse panics when Parse fails. Intended for fixtures.
func MustParse(data string) Node {
	node, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return node
}

// FromValue builds a Node tree from already decoded JSON values. Map keys are
// visited in sorted order because Go maps carry no ordering.
func FromValue(value any) Node {
	obj, ok := orderedFromValue(value).(orderedObject)
	if !ok {
		return Node{}
	}
	return Node{Kind: KindGroup, Children: childrenFromObject(obj)}
}

// MarshalJSON encodes the node back into its PARAM shape with key order kept.
func (n Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n Node) encode(buf *bytes.Buffer) error {
	switch n.Kind {
	case KindNone:
		buf.WriteString("null")
	case KindArray:
		data, err := json.Marshal(n.Items)
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindScalar:
		if !n.Wrapped {
			data, err := json.Marshal(n.Value)
			if err != nil {
				return err
			}
			buf.Write(data)
			return nil
		}
		buf.WriteByte('{')
		if n.TypeTag != "" {
			tag, _ := json.Marshal(n.TypeTag)
			buf.WriteString(`"type":`)
			buf.Write(tag)
			buf.WriteByte(',')
		}
		value, err := json.Marshal(n.Value)
		if err != nil {
			return err
		}
		buf.WriteString(`"value":`)
		buf.Write(value)
		buf.WriteByte('}')
	case KindGroup:
		buf.WriteByte('{')
		written := 0
		if n.TypeTag != "" {
			buf.WriteString(`"type":`)
			tag, _ := json.Marshal(n.TypeTag)
			buf.Write(tag)
			written++
		}
		for _, child := range n.Children {
			if written > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(child.Key)
			buf.Write(key)
			buf.WriteByte(':')
			if err := child.encode(buf); err != nil {
				return err
			}
			written++
		}
		buf.WriteByte('}')
	}
	return nil
}

type orderedField struct {
	key   string
	value any
}

type orderedObject []orderedField

func (o orderedObject) get(key string) (any, bool) {
	for _, field := range o {
		if field.key == key {
			return field.value, true
		}
	}
	return nil, false
}

func childrenFromObject(obj orderedObject) []Node {
	children := make([]Node, 0, len(obj))
	for _, field := range obj {
		children = append(children, nodeFromValue(field.key, field.value))
	}
	return children
}

func nodeFromValue(key string, value any) Node {
	switch typed := value.(type) {
	case orderedObject:
		if wrapped, ok := typed.get(ValueKey); ok && isPrimitive(wrapped) {
			return Node{
				Key:     key,
				Kind:    KindScalar,
				TypeTag: typeTag(typed),
				Value:   wrapped,
				Wrapped: true,
			}
		}
		return Node{
			Key:      key,
			Kind:     KindGroup,
			TypeTag:  typeTag(typed),
			Children: groupChildren(typed),
		}
	case []any:
		return Node{Key: key, Kind: KindArray, Items: plainSlice(typed)}
	default:
		return Node{Key: key, Kind: KindScalar, Value: typed}
	}
}

// groupChildren drops the string type tag, which is display metadata for the
// group header rather than a field of its own.
func groupChildren(obj orderedObject) []Node {
	children := make([]Node, 0, len(obj))
	for _, field := range obj {
		if field.key == TypeKey {
			if _, ok := field.value.(string); ok {
				continue
			}
		}
		children = append(children, nodeFromValue(field.key, field.value))
	}
	return children
}

func typeTag(obj orderedObject) string {
	raw, ok := obj.get(TypeKey)
	if !ok {
		return ""
	}
	tag, _ := raw.(string)
	return strings.TrimSpace(tag)
}

func isPrimitive(value any) bool {
	switch value.(type) {
	case nil, string, bool, json.Number, float64, float32, int, int64, int32:
		return true
	default:
		return false
	}
}

func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch delim := tok.(type) {
	case json.Delim:
		switch delim {
		case '{':
			var obj orderedObject
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				value, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, orderedField{key: key, value: value})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			if obj == nil {
				obj = orderedObject{}
			}
			return obj, nil
		case '[':
			items := []any{}
			for dec.More() {
				value, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return items, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", delim)
		}
	default:
		return tok, nil
	}
}

func orderedFromValue(value any) any {
	switch typed := value.(type) {
	case orderedObject:
		return typed
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		obj := make(orderedObject, 0, len(keys))
		for _, key := range keys {
			obj = append(obj, orderedField{key: key, value: orderedFromValue(typed[key])})
		}
		return obj
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = orderedFromValue(item)
		}
		return out
	default:
		return typed
	}
}

// plainSlice converts ordered objects nested in array items back into plain
// maps so Items stays marshalable with encoding/json.
func plainSlice(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = plainValue(item)
	}
	return out
}

func plainValue(value any) any {
	switch typed := value.(type) {
	case orderedObject:
		out := make(map[string]any, len(typed))
		for _, field := range typed {
			out[field.key] = plainValue(field.value)
		}
		return out
	case []any:
		return plainSlice(typed)
	default:
		return typed
	}
}
