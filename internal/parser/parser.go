// Package parser splits documents into a YAML front matter header and a
// Markdown body, and renders them back.
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/postdex/internal/apperr"
	"github.com/starford/postdex/internal/models"
)

const (
	delim        = "---"
	strTag       = "!!str"
	timestampTag = "!!timestamp"
)

// Document holds the output of parsing a file.
type Document struct {
	// Meta is nil when the file has no header or an empty one.
	Meta      models.Metadata
	Body      string
	HasHeader bool
}

// Parse extracts the header and body from raw document bytes. A file without
// a header yields empty metadata and the entire content as body. Leading
// blank lines of the body are dropped either way. A header that
// is not a valid YAML mapping fails with apperr.ErrHeaderParse.
func Parse(data []byte) (*Document, error) {
	header, body, ok := splitHeader(data)
	if !ok {
		return &Document{Body: body}, nil
	}

	meta, err := decodeHeader(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrHeaderParse, err)
	}

	return &Document{Meta: meta, Body: body, HasHeader: true}, nil
}

// decodeHeader decodes the header through a yaml.Node so that values keep
// their literal text: timestamps stay strings and a repeated key keeps its
// last value.
func decodeHeader(header []byte) (models.Metadata, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(header, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	literalize(&doc)

	var meta models.Metadata
	if err := doc.Decode(&meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func literalize(n *yaml.Node) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.ShortTag() == timestampTag {
			n.Tag, n.Style = strTag, yaml.DoubleQuotedStyle
		}
	case yaml.MappingNode:
		n.Content = lastKeyWins(n.Content)
	}
	for _, c := range n.Content {
		literalize(c)
	}
}

// lastKeyWins drops every key/value pair whose key is repeated later in the
// same mapping.
func lastKeyWins(pairs []*yaml.Node) []*yaml.Node {
	last := make(map[string]int, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if k := pairs[i]; k.Kind == yaml.ScalarNode {
			last[k.Value] = i
		}
	}
	if len(last) == len(pairs)/2 {
		return pairs
	}
	out := make([]*yaml.Node, 0, 2*len(last))
	for i := 0; i+1 < len(pairs); i += 2 {
		k := pairs[i]
		if k.Kind == yaml.ScalarNode && last[k.Value] != i {
			continue
		}
		out = append(out, k, pairs[i+1])
	}
	return out
}

// splitHeader separates the header (between leading --- delimiter lines)
// from the body. If no complete header is found the entire content, minus
// leading blank lines, is body.
func splitHeader(data []byte) ([]byte, string, bool) {
	trimmed := bytes.TrimLeft(data, "\n\r")

	first, rest, ok := bytes.Cut(trimmed, []byte("\n"))
	if !ok || !isDelim(first) {
		return nil, string(trimmed), false
	}

	pos := 0
	for pos <= len(rest) {
		line, _, more := bytes.Cut(rest[pos:], []byte("\n"))
		if isDelim(line) {
			end := pos + len(line)
			if more {
				end++
			}
			body := strings.TrimLeft(string(rest[end:]), "\n\r")
			return rest[:pos], body, true
		}
		if !more {
			break
		}
		pos += len(line) + 1
	}

	// No closing delimiter, so there is no header.
	return nil, string(trimmed), false
}

func isDelim(line []byte) bool {
	return string(bytes.TrimRight(line, "\r")) == delim
}
