package core

import "fmt"

// CoreType is the persisted string tag of a backend dialect.
type CoreType string

const (
	Xray    CoreType = "xray"
	SingBox CoreType = "sing_box"
)

// BackendType is the stable ordinal sent to nodes on the wire.
type BackendType int

const (
	BackendXray    BackendType = 0
	BackendSingBox BackendType = 1
)

func (t CoreType) Backend() BackendType {
	if t == SingBox {
		return BackendSingBox
	}
	return BackendXray
}

func (t CoreType) Valid() bool {
	return t == Xray || t == SingBox
}

// ConfigError reports a malformed or ambiguous backend document. It is
// raised at construction time and never partially applied.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

func configErrorf(format string, a ...interface{}) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, a...)}
}

// DialectError reports use of a feature that the document's dialect
// does not support, such as fallback tags on a sing-box config.
type DialectError struct {
	Reason string
}

func (e *DialectError) Error() string {
	return e.Reason
}
