package validate

import (
	"fmt"
	"strings"
)

const maxNameLength = 214

var reservedNames = map[string]bool{
	"node_modules": true,
	"con":          true,
	"prn":          true,
	"aux":          true,
	"nul":          true,
}

func init() {
	for i := 1; i <= 9; i++ {
		reservedNames[fmt.Sprintf("com%d", i)] = true
		reservedNames[fmt.Sprintf("lpt%d", i)] = true
	}
}

const nameHint = "use lowercase letters, digits, '-' or '_', optionally scoped as @scope/name"

// ValidateName checks that name is usable as a package and directory name.
func ValidateName(name string) error {
	fail := func(format string, args ...any) error {
		return newError("name", nameHint, fmt.Sprintf("invalid project name %q: ", name)+fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(name) == "" {
		return newError("name", nameHint, "project name must not be empty")
	}
	if len(name) > maxNameLength {
		return fail("must be at most %d characters", maxNameLength)
	}
	if strings.Contains(name, " ") {
		return fail("must not contain spaces")
	}
	for _, r := range name {
		if !isNameRune(r) {
			return fail("contains invalid character %q", r)
		}
	}

	base := name
	if strings.HasPrefix(name, "@") {
		scope, rest, ok := strings.Cut(name[1:], "/")
		if !ok || scope == "" || rest == "" {
			return fail("scoped names must look like @scope/name")
		}
		if strings.ContainsAny(scope, "@") {
			return fail("scope must not contain '@'")
		}
		base = rest
	}
	if strings.ContainsAny(base, "@/") {
		return fail("only one @scope/ prefix is allowed")
	}

	if strings.HasPrefix(base, "_") {
		return fail("must not start with '_'")
	}
	if reservedNames[base] {
		return fail("%q is a reserved name", base)
	}

	return nil
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '@', r == '/':
		return true
	}
	return false
}
