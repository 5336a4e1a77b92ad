package api

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const microsecondThreshold = 1e10

// normalizeTimestamps rewrites every numeric "timestamp" field above the
// microsecond threshold in a passthrough result, dividing by 1000 so CDP
// results line up with the client's derived records. Non-numeric timestamp
// values are left untouched.
func normalizeTimestamps(raw []byte) []byte {
	out := raw
	var walk func(prefix string, v gjson.Result)
	walk = func(prefix string, v gjson.Result) {
		if v.IsObject() {
			v.ForEach(func(k, child gjson.Result) bool {
				path := joinPath(prefix, escapeKey(k.String()))
				if k.String() == "timestamp" && child.Type == gjson.Number && child.Float() > microsecondThreshold {
					out, _ = sjson.SetBytes(out, path, child.Float()/1000)
				} else if child.IsObject() || child.IsArray() {
					walk(path, child)
				}
				return true
			})
			return
		}
		if v.IsArray() {
			i := 0
			v.ForEach(func(_, child gjson.Result) bool {
				if child.IsObject() || child.IsArray() {
					walk(joinPath(prefix, strconv.Itoa(i)), child)
				}
				i++
				return true
			})
		}
	}
	walk("", gjson.ParseBytes(raw))
	return out
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`)

func escapeKey(k string) string {
	return keyEscaper.Replace(k)
}
