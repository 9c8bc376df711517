package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SingBoxConfig normalizes a sing-box document into the canonical
// inbound view. The object is read-only after construction.
type SingBoxConfig struct {
	doc           map[string]interface{}
	excludeTags   []string
	inbounds      []string
	inboundsByTag map[string]*CanonicalInbound
}

func NewSingBoxConfig(raw []byte, excludeTags []string, fallbacksTags []string) (*SingBoxConfig, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return nil, err
	}

	if len(fallbacksTags) > 0 {
		return nil, &DialectError{Reason: "fallback inbound tags are not supported for sing-box cores"}
	}

	inbounds, err := validateInbounds(doc, "sing-box")
	if err != nil {
		return nil, err
	}

	c := &SingBoxConfig{
		doc:           doc,
		excludeTags:   excludeTags,
		inbounds:      []string{},
		inboundsByTag: make(map[string]*CanonicalInbound, len(inbounds)),
	}
	c.resolveInbounds(inbounds)
	return c, nil
}

func (c *SingBoxConfig) resolveInbounds(inbounds []map[string]interface{}) {
	excluded := make(map[string]bool, len(c.excludeTags))
	for _, tag := range c.excludeTags {
		excluded[tag] = true
	}

	for _, inbound := range inbounds {
		tag := getString(inbound, "tag")
		if excluded[tag] {
			continue
		}

		c.inbounds = append(c.inbounds, tag)
		c.inboundsByTag[tag] = c.normalizeInbound(inbound)
	}
}

func (c *SingBoxConfig) normalizeInbound(inbound map[string]interface{}) *CanonicalInbound {
	settings := newCanonicalInbound(getString(inbound, "tag"), getString(inbound, "type", "protocol"))
	settings.Port = extractSingBoxPort(inbound)
	settings.Flow = getString(inbound, "flow")
	if enc := getString(inbound, "encryption"); enc != "" {
		settings.Encryption = enc
	}
	settings.setMethod(getString(inbound, "method"))
	settings.Password = getString(inbound, "password")

	tlsCfg := getMap(inbound, "tls")
	settings.MLDSA65Verify = scalarString(tlsCfg["mldsa65Verify"])
	applySingBoxTLS(settings, tlsCfg)

	if transport := getMap(inbound, "transport"); transport != nil {
		applySingBoxTransport(settings, transport)
	}

	return settings
}

// extractSingBoxPort prefers an explicit listen port over a declared
// range. A range renders as "start-end"; a lone range start is used
// alone; absence of all three yields nil.
func extractSingBoxPort(inbound map[string]interface{}) interface{} {
	for _, key := range []string{"listen_port", "port"} {
		switch v := inbound[key].(type) {
		case float64:
			return int(v)
		case string:
			stripped := strings.TrimSpace(v)
			if stripped == "" {
				continue
			}
			if n, err := strconv.Atoi(stripped); err == nil {
				return n
			}
			return stripped
		}
	}

	switch portRange := inbound["listen_port_range"].(type) {
	case map[string]interface{}:
		start, hasStart := rangeBound(portRange, "start", "from")
		end, hasEnd := rangeBound(portRange, "end", "to")
		if hasStart && hasEnd {
			return fmt.Sprintf("%d-%d", start, end)
		}
		if hasStart {
			return start
		}
	case string:
		if portRange != "" {
			return portRange
		}
	}

	return nil
}

func rangeBound(portRange map[string]interface{}, keys ...string) (int, bool) {
	for _, key := range keys {
		switch v := portRange[key].(type) {
		case float64:
			if v != 0 {
				return int(v), true
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n != 0 {
				return n, true
			}
		}
	}
	return 0, false
}

func applySingBoxTLS(settings *CanonicalInbound, tlsCfg map[string]interface{}) {
	if tlsCfg == nil || !getBool(tlsCfg, "enabled") {
		return
	}

	reality := getMap(tlsCfg, "reality")
	if reality != nil && getBool(reality, "enabled") {
		settings.TLS = TLSReality
		sni := ensureList(tlsCfg["server_name"])
		if len(sni) == 0 {
			sni = ensureList(getMap(reality, "handshake")["server"])
		}
		settings.SNI = sni
		settings.PublicKey = getString(reality, "public_key")
		sids := ensureList(firstPresent(reality["short_id"], reality["short_ids"]))
		settings.ShortIds = sids
		if len(sids) > 0 {
			settings.ShortId = sids[0]
		}
		settings.SpiderX = getString(reality, "spider_x", "spider_x_content")
		if v := getString(reality, "mldsa65Verify", "mldsa_65_verify"); v != "" {
			settings.MLDSA65Verify = v
		}
		return
	}

	settings.TLS = TLSEnabled
	sni := ensureList(tlsCfg["server_name"])
	if len(sni) == 0 {
		sni = ensureList(tlsCfg["server_name_list"])
	}
	settings.SNI = sni
	settings.ALPN = ensureList(tlsCfg["alpn"])
	settings.Fingerprint = getString(tlsCfg, "fingerprint")
	settings.AllowInsecure = getBool(tlsCfg, "insecure")
}

// applySingBoxTransport keys off the transport type, overriding the
// network field.
func applySingBoxTransport(settings *CanonicalInbound, transport map[string]interface{}) {
	if network := getString(transport, "type", "network"); network != "" {
		settings.Network = strings.ToLower(network)
	}

	switch settings.Network {
	case "ws", "websocket":
		settings.Path = getString(transport, "path")
		hostValue := getMap(transport, "headers")["Host"]
		if hostValue == nil {
			hostValue = transport["host"]
		}
		settings.Host = ensureList(hostValue)
	case "grpc":
		settings.Path = getString(transport, "service_name")
		if authority := getString(transport, "authority"); authority != "" {
			settings.Host = []string{authority}
		}
	case "http", "h2", "h3":
		settings.Path = getString(transport, "path")
		settings.Host = ensureList(transport["host"])
	case "quic", "kcp":
		settings.HeaderType = getString(transport, "header")
		if settings.Network == "kcp" {
			settings.Path = getString(transport, "seed")
		}
	case "splithttp", "xhttp":
		settings.Path = getString(transport, "path")
		settings.Host = ensureList(transport["host"])
	default: // tcp/raw
		if hostValue := getMap(transport, "headers")["Host"]; hostValue != nil {
			settings.Host = ensureList(hostValue)
		}
		if _, ok := transport["path"]; ok {
			settings.Path = getString(transport, "path")
		}
	}
}

func firstPresent(values ...interface{}) interface{} {
	for _, value := range values {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			if v != "" {
				return v
			}
		case []interface{}:
			if len(v) > 0 {
				return v
			}
		default:
			return v
		}
	}
	return nil
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *SingBoxConfig) ToString() string {
	out, err := json.Marshal(c.doc)
	if err != nil {
		return ""
	}
	return string(out)
}

func (c *SingBoxConfig) BackendType() BackendType {
	return BackendSingBox
}

func (c *SingBoxConfig) CoreType() CoreType {
	return SingBox
}

func (c *SingBoxConfig) ExcludeInboundTags() []string {
	return c.excludeTags
}

func (c *SingBoxConfig) Inbounds() []string {
	return c.inbounds
}

func (c *SingBoxConfig) InboundsByTag() map[string]*CanonicalInbound {
	return c.inboundsByTag
}
