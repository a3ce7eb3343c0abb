package batch

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MaxSourceSize is the maximum sheet source size in bytes (128 KB).
const MaxSourceSize = 128 * 1024

// MaxExpressions is the maximum number of expressions per sheet.
const MaxExpressions = 1000

// ParseError represents an error encountered while parsing a sheet.
type ParseError struct {
	Message  string
	Location string // e.g., "expression 3 (line 7)"
}

func (e *ParseError) Error() string {
	if e.Location != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Location, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Parse parses a YAML or JSON sheet. The document is either a mapping with
// an "expressions" list or a bare list. Each list item is a string or a
// mapping with "expr" and an optional "name".
func Parse(source []byte) (*Sheet, error) {
	if len(source) > MaxSourceSize {
		return nil, &ParseError{Message: fmt.Sprintf("sheet source size %d exceeds maximum %d bytes", len(source), MaxSourceSize)}
	}

	var raw yaml.Node
	if err := yaml.Unmarshal(source, &raw); err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	// The root node is a document node containing the actual content
	if raw.Kind != yaml.DocumentNode || len(raw.Content) == 0 {
		return nil, &ParseError{Message: "empty sheet"}
	}

	sheet := &Sheet{}
	rootNode := raw.Content[0]

	var list *yaml.Node
	switch rootNode.Kind {
	case yaml.SequenceNode:
		list = rootNode
	case yaml.MappingNode:
		for i := 0; i+1 < len(rootNode.Content); i += 2 {
			key := rootNode.Content[i].Value
			val := rootNode.Content[i+1]
			switch key {
			case "name":
				sheet.Name = val.Value
			case "description":
				sheet.Description = val.Value
			case "expressions":
				list = val
			default:
				return nil, &ParseError{Message: fmt.Sprintf("unknown field %q", key), Location: fmt.Sprintf("line %d", rootNode.Content[i].Line)}
			}
		}
		if list == nil {
			return nil, &ParseError{Message: "missing 'expressions' list"}
		}
	default:
		return nil, &ParseError{Message: "sheet must be a mapping or a list"}
	}

	entries, err := parseEntries(list)
	if err != nil {
		return nil, err
	}
	sheet.Expressions = entries
	return sheet, nil
}

func parseEntries(node *yaml.Node) ([]Entry, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, &ParseError{Message: "'expressions' must be a list", Location: fmt.Sprintf("line %d", node.Line)}
	}
	if len(node.Content) == 0 {
		return nil, &ParseError{Message: "'expressions' must not be empty"}
	}
	if len(node.Content) > MaxExpressions {
		return nil, &ParseError{Message: fmt.Sprintf("too many expressions: %d (max %d)", len(node.Content), MaxExpressions)}
	}

	entries := make([]Entry, 0, len(node.Content))
	seen := make(map[string]bool)
	for i, item := range node.Content {
		loc := fmt.Sprintf("expression %d (line %d)", i+1, item.Line)

		entry, err := parseEntry(item, loc)
		if err != nil {
			return nil, err
		}
		if entry.Name == "" {
			entry.Name = fmt.Sprintf("expr-%d", i+1)
		}
		if seen[entry.Name] {
			return nil, &ParseError{Message: fmt.Sprintf("duplicate name %q", entry.Name), Location: loc}
		}
		seen[entry.Name] = true
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseEntry(item *yaml.Node, loc string) (Entry, error) {
	entry := Entry{Line: item.Line}

	switch item.Kind {
	case yaml.ScalarNode:
		entry.Expr = item.Value
	case yaml.MappingNode:
		for j := 0; j+1 < len(item.Content); j += 2 {
			key := item.Content[j].Value
			val := item.Content[j+1]
			if val.Kind != yaml.ScalarNode {
				return Entry{}, &ParseError{Message: fmt.Sprintf("field %q must be a scalar", key), Location: loc}
			}
			switch key {
			case "name":
				entry.Name = val.Value
			case "expr":
				entry.Expr = val.Value
			default:
				return Entry{}, &ParseError{Message: fmt.Sprintf("unknown field %q", key), Location: loc}
			}
		}
	default:
		return Entry{}, &ParseError{Message: "expression must be a string or a mapping", Location: loc}
	}

	if entry.Expr == "" {
		return Entry{}, &ParseError{Message: "missing expression", Location: loc}
	}
	return entry, nil
}
