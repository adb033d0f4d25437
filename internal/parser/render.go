package parser

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/postdex/internal/models"
)

// Render serializes metadata and body into the on-disk document format:
//
//	---
//	<yaml, keys sorted>
//	---
//
//	<body>
//
// yaml.v3 emits map keys in sorted order, so the same field set always
// renders to the same bytes. Strings that read as YAML timestamps are written
// unquoted, the way Parse reads them back.
func Render(meta models.Metadata, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(delim + "\n")

	if len(meta) > 0 {
		var node yaml.Node
		if err := node.Encode(map[string]any(meta)); err != nil {
			return nil, fmt.Errorf("parser: render header: %w", err)
		}
		plainTimestamps(&node)

		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return nil, fmt.Errorf("parser: render header: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("parser: render header: %w", err)
		}
	}

	buf.WriteString(delim + "\n\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

func plainTimestamps(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode && n.ShortTag() == strTag &&
		n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 && isTimestamp(n.Value) {
		n.Tag = timestampTag
		n.Style = 0
	}
	for _, c := range n.Content {
		plainTimestamps(c)
	}
}

// isTimestamp reports whether s, written as a plain scalar, resolves to a
// YAML timestamp.
func isTimestamp(s string) bool {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil || len(doc.Content) != 1 {
		return false
	}
	v := doc.Content[0]
	return v.Kind == yaml.ScalarNode && v.Style == 0 && v.ShortTag() == timestampTag
}
