package schemaform

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const redactedValue = "********"

var secretKeys = []string{
	"password", "passwd", "secret", "token",
	"access_key", "secret_key", "credentials",
}

// Redact replaces secret-looking values in a config document so it can be
// printed. Keys are matched by name at any nesting depth; a document that
// does not parse is returned unchanged.
func Redact(config string) string {
	parsed := gjson.Parse(config)
	if !parsed.IsObject() {
		return config
	}
	return redactObject(config, "", parsed)
}

func redactObject(config, prefix string, obj gjson.Result) string {
	obj.ForEach(func(key, value gjson.Result) bool {
		// Literal dots in key names would otherwise be read as path
		// separators.
		path := strings.ReplaceAll(key.String(), ".", `\.`)
		if prefix != "" {
			path = prefix + "." + path
		}
		switch {
		case value.IsObject():
			config = redactObject(config, path, value)
		case isSecretKey(key.String()) && value.Type == gjson.String && value.String() != "":
			config, _ = sjson.Set(config, path, redactedValue)
		}
		return true
	})
	return config
}

func isSecretKey(key string) bool {
	key = strings.ToLower(key)
	for _, secret := range secretKeys {
		if key == secret || strings.HasSuffix(key, "_"+secret) {
			return true
		}
	}
	return false
}
