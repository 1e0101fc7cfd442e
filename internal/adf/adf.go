// Package adf flattens Atlassian Document Format trees into plain text.
//
// A document is a tree of typed nodes. Text leaves carry literal text,
// containers carry an ordered "content" array. Flattening concatenates leaf
// text depth-first in document order with no separator. Malformed or unknown
// nodes contribute nothing; flattening never fails.
package adf

import "github.com/tidwall/gjson"

// handler extracts text from one node kind. ok=false defers to the node's
// children.
type handler func(node gjson.Result) (text string, ok bool)

var handlers = map[string]handler{
	"text": textNode,
}

// Flatten returns the plain text of an ADF node.
func Flatten(node gjson.Result) string {
	if !node.IsObject() {
		return ""
	}
	if h, ok := handlers[node.Get("type").String()]; ok {
		if text, ok := h(node); ok {
			return text
		}
	}
	return children(node)
}

// FlattenJSON is Flatten over a raw JSON document.
func FlattenJSON(doc string) string {
	return Flatten(gjson.Parse(doc))
}

// Text renders a field that may hold an ADF node or a plain scalar. Absent and
// null values yield placeholder, numbers and booleans are rendered verbatim and
// arrays yield "".
func Text(v gjson.Result, placeholder string) string {
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return placeholder
	case v.Type == gjson.String:
		return v.Str
	case v.IsObject():
		return Flatten(v)
	case v.Type == gjson.Number, v.Type == gjson.True, v.Type == gjson.False:
		return v.String()
	default:
		return ""
	}
}

func textNode(node gjson.Result) (string, bool) {
	text := node.Get("text")
	if text.Type != gjson.String {
		return "", false
	}
	return text.Str, true
}

func children(node gjson.Result) string {
	content := node.Get("content")
	if !content.IsArray() {
		return ""
	}
	var out []byte
	content.ForEach(func(_, child gjson.Result) bool {
		out = append(out, Flatten(child)...)
		return true
	})
	return string(out)
}
