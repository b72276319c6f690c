package prune

import (
	"regexp"
	"strings"
)

// StripReexport removes `export * from '<key>';` from a package index together
// with the line comment directly above it and one blank line below it.
func StripReexport(text, key string) string {
	module := regexp.QuoteMeta(key)
	re := regexp.MustCompile(`(?m)(?:^//[^\n]*\n)?^export \* from ['"]` + module + `['"];?[ \t]*(?:\n[ \t]*\n|\n|$)`)
	return re.ReplaceAllString(text, "")
}

var (
	clientBlock = regexp.MustCompile(`\n[ \t]*client:\s*\{([^}]*)\},?[ \t]*`)
	envKey      = regexp.MustCompile(`(?m)^\s*([A-Z][A-Z0-9_]*)\s*:`)
)

// StripClientEnv removes the client block of a createEnv schema and the
// runtimeEnv entries of the variables it declared.
func StripClientEnv(text string) string {
	m := clientBlock.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	text = strings.Replace(text, m[0], "", 1)

	for _, key := range envKey.FindAllStringSubmatch(m[1], -1) {
		name := regexp.QuoteMeta(key[1])
		entry := regexp.MustCompile(`(?m)^[ \t]*` + name + `:\s*process\.env\.` + name + `,?[ \t]*\n`)
		text = entry.ReplaceAllString(text, "")
	}
	return text
}
