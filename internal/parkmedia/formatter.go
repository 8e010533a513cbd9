package parkmedia

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how FormatResult renders a result
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
	FormatRaw  OutputFormat = "raw"
)

// ParseOutputFormat validates a format name
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatRaw:
		return FormatRaw, nil
	default:
		return "", NewConfigError(fmt.Sprintf("unknown output format %q (want json, yaml or raw)", s))
	}
}

// FormatResult renders a result for printing.
//
// Mappings and arrays are written as JSON (indented when pretty is set) or
// YAML. Raw bodies are printed as they are, except that a pretty-printed
// raw body that looks like JSON is re-indented. FormatRaw always prints the
// untouched response body when one is available.
func FormatResult(r Result, format OutputFormat, pretty bool) (string, error) {
	if format == FormatRaw {
		return string(resultBody(r)), nil
	}

	var value any
	switch v := r.(type) {
	case nil:
		return "", nil
	case JSONResult:
		value = v.Value
	case XMLResult:
		value = v.Payload
	case HTMLResult:
		value = v.Fields
	case RawResult:
		return formatRaw(v.Body, format, pretty)
	default:
		return "", fmt.Errorf("unsupported result type %T", r)
	}

	if format == FormatYAML {
		return formatYAML(value)
	}
	return formatJSON(value, pretty)
}

func resultBody(r Result) []byte {
	switch v := r.(type) {
	case RawResult:
		return v.Body
	case HTMLResult:
		return v.Body
	case JSONResult:
		b, _ := json.Marshal(v.Value)
		return b
	case XMLResult:
		b, _ := json.Marshal(v.Payload)
		return b
	default:
		return nil
	}
}

func formatRaw(body []byte, format OutputFormat, pretty bool) (string, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	looksJSON := bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))
	if (!pretty && format != FormatYAML) || !looksJSON {
		return string(body), nil
	}

	v, err := DecodeJSONValue(body)
	if err != nil {
		return string(body), nil
	}
	if format == FormatYAML {
		return formatYAML(v)
	}
	return formatJSON(v, true)
}

func formatJSON(v any, pretty bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatYAML(v any) (string, error) {
	data, err := yaml.Marshal(yamlNode(v))
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// yamlNode builds a node tree so that payload key order survives.
func yamlNode(v any) *yaml.Node {
	switch t := v.(type) {
	case *Payload:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		t.Each(func(k string, val any) {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				yamlNode(val))
		})
		return n
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t {
			n.Content = append(n.Content, yamlNode(item))
		}
		return n
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t}
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(t)}
	case int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(t, 10)}
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(t)}
	default:
		n := &yaml.Node{}
		if err := n.Encode(v); err != nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fmt.Sprint(v)}
		}
		return n
	}
}
