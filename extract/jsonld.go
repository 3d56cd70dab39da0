package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// findJSONLD returns the first embedded JSON-LD node whose @type matches one
// of the given schema.org types. Blocks are parsed defensively: invalid JSON
// is skipped, never fatal. Top-level arrays and @graph containers are
// flattened one level.
func findJSONLD(doc *goquery.Document, types ...string) map[string]any {
	var found map[string]any

	doc.Find(`script[type='application/ld+json']`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true
		}

		for _, node := range flattenJSONLD(raw) {
			if nodeHasType(node, types) {
				found = node
				return false
			}
		}
		return true
	})

	return found
}

// flattenJSONLD expands a decoded JSON-LD document into candidate nodes.
func flattenJSONLD(raw any) []map[string]any {
	var nodes []map[string]any

	switch v := raw.(type) {
	case map[string]any:
		nodes = append(nodes, v)
		if graph, ok := v["@graph"].([]any); ok {
			for _, g := range graph {
				if m, ok := g.(map[string]any); ok {
					nodes = append(nodes, m)
				}
			}
		}
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				nodes = append(nodes, m)
			}
		}
	}

	return nodes
}

// nodeHasType matches @type declared as a string or an array of strings.
func nodeHasType(node map[string]any, types []string) bool {
	switch t := node["@type"].(type) {
	case string:
		for _, want := range types {
			if t == want {
				return true
			}
		}
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				continue
			}
			for _, want := range types {
				if s == want {
					return true
				}
			}
		}
	}
	return false
}

// jsonString reads the first non-empty string under any of the keys.
func jsonString(node map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := node[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case map[string]any:
			// Nested entity, e.g. brand: {"@type":"Brand","name":"..."}.
			if name, ok := v["name"].(string); ok && strings.TrimSpace(name) != "" {
				return strings.TrimSpace(name)
			}
		}
	}
	return ""
}

// jsonFloat reads a numeric value that schema.org publishers emit either as
// a JSON number or a string.
func jsonFloat(node map[string]any, keys ...string) *float64 {
	for _, key := range keys {
		switch v := node[key].(type) {
		case float64:
			f := v
			return &f
		case string:
			if p := ExtractPrice(v); p != nil {
				return p
			}
		}
	}
	return nil
}

// jsonStrings reads a value that may be a single string or an array.
func jsonStrings(node map[string]any, key string) []string {
	switch v := node[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

// jsonOffer returns the first offer node: offers may be an object or array.
func jsonOffer(node map[string]any) map[string]any {
	switch v := node["offers"].(type) {
	case map[string]any:
		return v
	case []any:
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}
