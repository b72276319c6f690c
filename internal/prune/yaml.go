package prune

import "gopkg.in/yaml.v3"

// mappingValue returns the value node stored under key in a mapping node.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// deleteMappingKeys removes every key in keys from a mapping node and
// returns the removed key names in document order.
func deleteMappingKeys(node *yaml.Node, keys map[string]bool) []string {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	var removed []string
	kept := node.Content[:0]
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if keys[k.Value] {
			removed = append(removed, k.Value)
			continue
		}
		kept = append(kept, k, v)
	}
	node.Content = kept
	return removed
}

// deleteSequenceScalars drops scalar items whose value is in values.
func deleteSequenceScalars(node *yaml.Node, values map[string]bool) int {
	if node == nil || node.Kind != yaml.SequenceNode {
		return 0
	}

	removed := 0
	kept := node.Content[:0]
	for _, item := range node.Content {
		if item.Kind == yaml.ScalarNode && values[item.Value] {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	node.Content = kept
	return removed
}

// documentRoot returns the top-level mapping of a document node.
func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc == nil || doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	return doc.Content[0]
}
