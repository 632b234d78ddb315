package meta

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// expandEnvExpr replaces ${env.KEY} with the KEY environment variable, unset variables expand to "".
// An unterminated expression is kept as is; a key with characters other than letters, digits
// or '_' keeps its prefix literal and scanning resumes after it.
func expandEnvExpr(value string) string {
	if !strings.Contains(value, envPrefix) {
		return value
	}
	var builder strings.Builder
	for {
		start := strings.Index(value, envPrefix)
		if start == -1 {
			builder.WriteString(value)
			return builder.String()
		}
		builder.WriteString(value[:start])
		rest := value[start+len(envPrefix):]
		end := strings.IndexByte(rest, '}')
		if end == -1 {
			builder.WriteString(value[start:])
			return builder.String()
		}
		key := rest[:end]
		if !isEnvKey(key) {
			builder.WriteString(envPrefix)
			value = rest
			continue
		}
		builder.WriteString(os.Getenv(key))
		value = rest[end+1:]
	}
}

func isEnvKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
