package core

import "strings"

type TLSMode string

const (
	TLSNone    TLSMode = "none"
	TLSEnabled TLSMode = "tls"
	TLSReality TLSMode = "reality"
)

// CanonicalInbound is the backend-agnostic view of one configured
// entry point. Field names on the wire follow the panel's legacy
// keys, which client-facing consumers already depend on.
type CanonicalInbound struct {
	Tag      string `json:"tag"`
	Protocol string `json:"protocol"`
	Network  string `json:"network"`
	// Port keeps the document's scalar shape: an int, a numeric
	// string, or a "start-end" range string. Nil when absent.
	Port          interface{} `json:"port"`
	TLS           TLSMode     `json:"tls"`
	SNI           []string    `json:"sni"`
	Host          []string    `json:"host"`
	Path          string      `json:"path"`
	HeaderType    string      `json:"header_type"`
	Fingerprint   string      `json:"fp"`
	ALPN          []string    `json:"alpn"`
	AllowInsecure bool        `json:"allowinsecure"`
	Flow          string      `json:"flow"`
	Encryption    string      `json:"encryption"`
	Method        string      `json:"method"`
	Password      string      `json:"password"`
	Is2022        bool        `json:"is_2022"`
	PublicKey     string      `json:"pbk"`
	ShortId       string      `json:"sid"`
	ShortIds      []string    `json:"sids"`
	SpiderX       string      `json:"spx"`
	MLDSA65Verify string      `json:"mldsa65Verify,omitempty"`
}

func newCanonicalInbound(tag, protocol string) *CanonicalInbound {
	return &CanonicalInbound{
		Tag:        tag,
		Protocol:   strings.ToLower(protocol),
		Network:    "tcp",
		TLS:        TLSNone,
		SNI:        []string{},
		Host:       []string{},
		ALPN:       []string{},
		ShortIds:   []string{},
		Encryption: "none",
	}
}

func (i *CanonicalInbound) setMethod(method string) {
	i.Method = method
	i.Is2022 = strings.HasPrefix(method, "2022-blake3")
}
