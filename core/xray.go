package core

import (
	"encoding/json"
	"strconv"
	"strings"
)

// XrayConfig normalizes an xray document into the canonical inbound
// view. Unlike the sing-box dialect it accepts fallback inbound tags.
type XrayConfig struct {
	doc           map[string]interface{}
	excludeTags   []string
	fallbacksTags []string
	inbounds      []string
	inboundsByTag map[string]*CanonicalInbound
}

func NewXrayConfig(raw []byte, excludeTags []string, fallbacksTags []string) (*XrayConfig, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return nil, err
	}

	inbounds, err := validateInbounds(doc, "xray")
	if err != nil {
		return nil, err
	}

	tags := make(map[string]bool, len(inbounds))
	for _, inbound := range inbounds {
		tags[getString(inbound, "tag")] = true
	}
	for _, tag := range fallbacksTags {
		if !tags[tag] {
			return nil, configErrorf("fallback inbound tag '%s' not found in config", tag)
		}
	}

	c := &XrayConfig{
		doc:           doc,
		excludeTags:   excludeTags,
		fallbacksTags: fallbacksTags,
		inbounds:      []string{},
		inboundsByTag: make(map[string]*CanonicalInbound, len(inbounds)),
	}
	c.resolveInbounds(inbounds)
	return c, nil
}

func (c *XrayConfig) resolveInbounds(inbounds []map[string]interface{}) {
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

func (c *XrayConfig) normalizeInbound(inbound map[string]interface{}) *CanonicalInbound {
	settings := newCanonicalInbound(getString(inbound, "tag"), getString(inbound, "protocol", "type"))
	settings.Port = extractXrayPort(inbound["port"])

	if proto := getMap(inbound, "settings"); proto != nil {
		if dec := getString(proto, "decryption"); dec != "" {
			settings.Encryption = dec
		}
		settings.Flow = getString(proto, "flow")
		settings.setMethod(getString(proto, "method"))
		settings.Password = getString(proto, "password")
	}

	stream := getMap(inbound, "streamSettings")
	if stream == nil {
		return settings
	}

	applyXraySecurity(settings, stream)
	applyXrayTransport(settings, stream)

	return settings
}

// extractXrayPort keeps the document's scalar shape: an int, a numeric
// string coerced to int, or a "start-end" range string passed through.
func extractXrayPort(port interface{}) interface{} {
	switch v := port.(type) {
	case float64:
		return int(v)
	case string:
		stripped := strings.TrimSpace(v)
		if stripped == "" {
			return nil
		}
		if n, err := strconv.Atoi(stripped); err == nil {
			return n
		}
		return stripped
	default:
		return nil
	}
}

func applyXraySecurity(settings *CanonicalInbound, stream map[string]interface{}) {
	switch strings.ToLower(getString(stream, "security")) {
	case "reality":
		settings.TLS = TLSReality
		reality := getMap(stream, "realitySettings")
		if reality == nil {
			return
		}
		sni := ensureList(reality["serverNames"])
		if len(sni) == 0 {
			sni = ensureList(reality["serverName"])
		}
		settings.SNI = sni
		settings.PublicKey = getString(reality, "publicKey")
		sids := ensureList(firstPresent(reality["shortIds"], reality["shortId"]))
		settings.ShortIds = sids
		if len(sids) > 0 {
			settings.ShortId = sids[0]
		}
		settings.SpiderX = getString(reality, "spiderX")
		settings.Fingerprint = getString(reality, "fingerprint")
		if v := getString(reality, "mldsa65Verify"); v != "" {
			settings.MLDSA65Verify = v
		}
	case "tls":
		settings.TLS = TLSEnabled
		tlsCfg := getMap(stream, "tlsSettings")
		if tlsCfg == nil {
			return
		}
		sni := ensureList(firstPresent(tlsCfg["serverName"], tlsCfg["serverNames"]))
		settings.SNI = sni
		settings.ALPN = ensureList(tlsCfg["alpn"])
		settings.Fingerprint = getString(tlsCfg, "fingerprint")
		settings.AllowInsecure = getBool(tlsCfg, "allowInsecure")
	}
}

func applyXrayTransport(settings *CanonicalInbound, stream map[string]interface{}) {
	if network := getString(stream, "network"); network != "" {
		settings.Network = strings.ToLower(network)
	}

	switch settings.Network {
	case "ws", "websocket":
		ws := getMap(stream, "wsSettings")
		settings.Path = getString(ws, "path")
		hostValue := getMap(ws, "headers")["Host"]
		if hostValue == nil {
			hostValue = ws["host"]
		}
		settings.Host = ensureList(hostValue)
	case "grpc", "gun":
		grpc := getMap(stream, "grpcSettings")
		settings.Path = getString(grpc, "serviceName")
		if authority := getString(grpc, "authority"); authority != "" {
			settings.Host = []string{authority}
		}
	case "http", "h2", "h3":
		http := getMap(stream, "httpSettings")
		settings.Path = getString(http, "path")
		settings.Host = ensureList(http["host"])
	case "kcp", "mkcp":
		kcp := getMap(stream, "kcpSettings")
		settings.HeaderType = getString(getMap(kcp, "header"), "type")
		settings.Path = getString(kcp, "seed")
	case "quic":
		quic := getMap(stream, "quicSettings")
		settings.HeaderType = getString(getMap(quic, "header"), "type")
	case "splithttp", "xhttp":
		split := getMap(stream, "xhttpSettings")
		if split == nil {
			split = getMap(stream, "splithttpSettings")
		}
		settings.Path = getString(split, "path")
		settings.Host = ensureList(split["host"])
	default: // tcp/raw
		tcp := getMap(stream, "tcpSettings")
		header := getMap(tcp, "header")
		settings.HeaderType = getString(header, "type")
		if settings.HeaderType == "http" {
			request := getMap(header, "request")
			if paths := ensureList(request["path"]); len(paths) > 0 {
				settings.Path = paths[0]
			}
			settings.Host = ensureList(getMap(request, "headers")["Host"])
		}
	}
}

func (c *XrayConfig) ToString() string {
	out, err := json.Marshal(c.doc)
	if err != nil {
		return ""
	}
	return string(out)
}

func (c *XrayConfig) BackendType() BackendType {
	return BackendXray
}

func (c *XrayConfig) CoreType() CoreType {
	return Xray
}

func (c *XrayConfig) ExcludeInboundTags() []string {
	return c.excludeTags
}

// FallbacksInboundTags is xray-only; the sing-box dialect rejects
// fallback tags at construction.
func (c *XrayConfig) FallbacksInboundTags() []string {
	return c.fallbacksTags
}

func (c *XrayConfig) Inbounds() []string {
	return c.inbounds
}

func (c *XrayConfig) InboundsByTag() map[string]*CanonicalInbound {
	return c.inboundsByTag
}
