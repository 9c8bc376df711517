package core

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
)

// Core is the capability one backend dialect implements: validate a
// native document eagerly, expose the canonical inbound view, and
// re-emit the original document for dispatch. Implementations are
// immutable after construction.
type Core interface {
	BackendType() BackendType
	CoreType() CoreType
	// ToString re-emits the original parsed document, not the
	// canonical view.
	ToString() string
	Inbounds() []string
	InboundsByTag() map[string]*CanonicalInbound
	ExcludeInboundTags() []string
}

// NewCore builds the dialect implementation selected by the coreType
// tag. Dispatch happens on the tag only.
func NewCore(coreType CoreType, raw []byte, excludeTags []string, fallbacksTags []string) (Core, error) {
	switch coreType {
	case Xray:
		return NewXrayConfig(raw, excludeTags, fallbacksTags)
	case SingBox:
		return NewSingBoxConfig(raw, excludeTags, fallbacksTags)
	default:
		return nil, configErrorf("unknown core type: %s", coreType)
	}
}

// NewCoreFromFile reads a dialect document from disk.
func NewCoreFromFile(coreType CoreType, path string, excludeTags []string, fallbacksTags []string) (Core, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewCore(coreType, raw, excludeTags, fallbacksTags)
}

// parseDocument decodes a serialized document, tolerating comments and
// trailing commas.
func parseDocument(raw []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(jsonc.ToJSON(raw), &doc); err != nil {
		return nil, configErrorf("malformed config document: %v", err)
	}
	return doc, nil
}

// validateInbounds enforces the construction rules shared by both
// dialects: a non-empty inbound list, every entry an object with a
// non-empty tag free of the reserved separators, and a declared
// protocol/type.
func validateInbounds(doc map[string]interface{}, dialect string) ([]map[string]interface{}, error) {
	rawList, ok := doc["inbounds"].([]interface{})
	if !ok || len(rawList) == 0 {
		return nil, configErrorf("%s config doesn't have inbounds", dialect)
	}

	inbounds := make([]map[string]interface{}, 0, len(rawList))
	seen := make(map[string]bool, len(rawList))
	for _, entry := range rawList {
		inbound, ok := entry.(map[string]interface{})
		if !ok {
			return nil, configErrorf("each inbound entry must be a JSON object")
		}

		tag := getString(inbound, "tag")
		if tag == "" {
			return nil, configErrorf("all inbounds must have a unique tag")
		}
		if strings.Contains(tag, ",") {
			return nil, configErrorf("character «,» is not allowed in inbound tag")
		}
		if strings.Contains(tag, "<=>") {
			return nil, configErrorf("character «<=>» is not allowed in inbound tag")
		}
		if seen[tag] {
			return nil, configErrorf("duplicated inbound tag: %s", tag)
		}
		seen[tag] = true

		if getString(inbound, "type") == "" && getString(inbound, "protocol") == "" {
			return nil, configErrorf("inbound '%s' must define a type/protocol", tag)
		}

		inbounds = append(inbounds, inbound)
	}
	return inbounds, nil
}

func getString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func getMap(m map[string]interface{}, key string) map[string]interface{} {
	if sub, ok := m[key].(map[string]interface{}); ok {
		return sub
	}
	return nil
}

func getBool(m map[string]interface{}, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// ensureList coerces a scalar or list value into an ordered list of
// strings, dropping null and empty entries.
func ensureList(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return []string{}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := scalarString(v); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

func scalarString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatNumber(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
