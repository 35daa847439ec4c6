package filter

import (
	"regexp"
	"strings"
)

// metaReplacer escapes every regexp metacharacter except '*', which is
// the only wildcard the pattern language supports.
var metaReplacer = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`+`, `\+`,
	`^`, `\^`,
	`$`, `\$`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`[`, `\[`,
	`]`, `\]`,
	`?`, `\?`,
)

// MatchAddress reports whether an email address matches a glob pattern
// where '*' stands for zero or more characters. Matching is anchored at
// both ends and case-insensitive. A pattern that fails to compile never
// matches.
func MatchAddress(address, pattern string) bool {
	if pattern == "*" || pattern == "*@*" {
		return true
	}

	escaped := metaReplacer.Replace(strings.ToLower(pattern))
	escaped = strings.ReplaceAll(escaped, "*", ".*")

	re, err := regexp.Compile("^" + escaped + "$")
	if err != nil {
		return false
	}
	return re.MatchString(strings.ToLower(address))
}
