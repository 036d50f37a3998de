package answers

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/unkn0wn-root/assembly/internal/errdef"
)

// LoadFile reads a YAML answers document. Scalars become single values and
// sequences become lists:
//
//	projectName: demo
//	preprocessor: includeSASS
//	features: [includeRequireJS]
func LoadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, errdef.Wrap(errdef.CodeAnswers, err, "read %s", path)
	}
	set, err := Parse(data)
	if err != nil {
		return Set{}, errdef.Wrap(errdef.CodeAnswers, err, "parse %s", path)
	}
	return set, nil
}

func Parse(data []byte) (Set, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(nil), nil
	}
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Set{}, err
	}
	b := NewBuilder()
	for key, node := range doc {
		switch node.Kind {
		case yaml.ScalarNode:
			if node.Tag == "!!null" {
				b.Set(key, "")
				continue
			}
			b.Set(key, node.Value)
		case yaml.SequenceNode:
			items := make([]string, 0, len(node.Content))
			for _, item := range node.Content {
				if item.Kind != yaml.ScalarNode {
					return Set{}, fmt.Errorf("line %d: %s must be a list of strings", item.Line, key)
				}
				items = append(items, item.Value)
			}
			b.Add(key, items...)
		default:
			return Set{}, fmt.Errorf("line %d: %s must be a string or a list", node.Line, key)
		}
	}
	return b.Build(), nil
}

// SaveFile writes set as a YAML answers document that LoadFile reads back.
func SaveFile(path string, set Set) error {
	data, err := Marshal(set)
	if err != nil {
		return errdef.Wrap(errdef.CodeAnswers, err, "encode answers")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errdef.Wrap(errdef.CodeAnswers, err, "write %s", path)
	}
	return nil
}

// Marshal renders the set as a YAML answers document with sorted keys.
func Marshal(set Set) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range set.Keys() {
		v, _ := set.Get(key)
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		var valNode *yaml.Node
		if v.IsList() {
			valNode = &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
			for _, item := range v.Items() {
				valNode.Content = append(valNode.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: item})
			}
		} else {
			valNode = &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}
		}
		root.Content = append(root.Content, keyNode, valNode)
	}
	return yaml.Marshal(root)
}
