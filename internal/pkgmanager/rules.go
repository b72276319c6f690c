package pkgmanager

import (
	"regexp"

	"github.com/jakoblorz/create-stack/internal/models"
)

// PatchRule rewrites one pnpm-specific command shape for another manager.
// Replace values are regexp templates; a manager without an entry leaves the
// text alone.
type PatchRule struct {
	Name    string
	Pattern *regexp.Regexp
	Replace map[models.PackageManager]string
}

// Apply returns text with every match of the rule rewritten for m.
func (r PatchRule) Apply(text string, m models.PackageManager) string {
	repl, ok := r.Replace[m]
	if !ok {
		return text
	}
	return r.Pattern.ReplaceAllString(text, repl)
}

// ApplyRules applies rules in order.
func ApplyRules(text string, rules []PatchRule, m models.PackageManager) string {
	for _, rule := range rules {
		text = rule.Apply(text, m)
	}
	return text
}

// DockerfileRules rewrite the production Dockerfile of an app.
var DockerfileRules = []PatchRule{
	{
		Name:    "toolchain",
		Pattern: regexp.MustCompile(`# \S* ?Install pnpm and manually configure PNPM_HOME\s*\n(?:ENV [^\n]*\n)*RUN npm install -g pnpm\s*\\\s*\n\s*&&\s*pnpm config set global-bin-dir "\$PNPM_HOME"\s*\\\s*\n\s*&&\s*pnpm add -g turbo[ \t]*\n?`),
		Replace: map[models.PackageManager]string{
			models.PackageManagerNpm: "# ✅ Install turbo globally\nRUN npm install -g turbo\n",
			models.PackageManagerBun: "# ✅ Install bun and add to PATH\n" +
				"ENV PATH=\"/root/.bun/bin:$$PATH\"\n" +
				"RUN apk add --no-cache curl bash \\\n" +
				"  && curl -fsSL https://bun.sh/install | bash \\\n" +
				"  && /root/.bun/bin/bun install -g turbo\n",
		},
	},
	{
		Name:    "cache",
		Pattern: regexp.MustCompile(`--mount=type=cache,id=pnpm,target=/root/\.local/share/pnpm/store\s*\\\s*\n\s*`),
		Replace: map[models.PackageManager]string{
			models.PackageManagerNpm: "",
			models.PackageManagerBun: "",
		},
	},
	{
		Name:    "install",
		Pattern: regexp.MustCompile(`pnpm install --frozen-lockfile --ignore-scripts`),
		Replace: map[models.PackageManager]string{
			models.PackageManagerNpm: "npm install --ignore-scripts",
			models.PackageManagerBun: "bun install",
		},
	},
	{
		Name:    "codegen",
		Pattern: regexp.MustCompile(`pnpm --filter @workspace/db db:generate`),
		Replace: map[models.PackageManager]string{
			models.PackageManagerNpm: "cd packages/db && npm run db:generate",
			models.PackageManagerBun: "cd packages/db && bun run db:generate",
		},
	},
	{
		Name:    "build",
		Pattern: regexp.MustCompile(`pnpm turbo build`),
		Replace: map[models.PackageManager]string{
			models.PackageManagerNpm: "turbo build",
			models.PackageManagerBun: "turbo build",
		},
	},
}

// ScriptRules rewrite package.json script commands. Order matters: the
// specific shapes run before RewriteInvocations handles what is left.
var ScriptRules = []PatchRule{
	{
		Name:    "dlx",
		Pattern: regexp.MustCompile(`\bpnpm dlx `),
		Replace: map[models.PackageManager]string{
			models.PackageManagerNpm: "npx ",
			models.PackageManagerBun: "bunx ",
		},
	},
	{
		Name:    "exec",
		Pattern: regexp.MustCompile(`\bpnpm exec `),
		Replace: map[models.PackageManager]string{
			models.PackageManagerNpm: "npx ",
			models.PackageManagerBun: "bunx ",
		},
	},
	{
		Name:    "filter",
		Pattern: regexp.MustCompile(`\bpnpm --filter[= ](\S+) (?:run )?`),
		Replace: map[models.PackageManager]string{
			models.PackageManagerNpm: "npm --workspace=${1} run ",
			models.PackageManagerBun: "bun run --filter ${1} ",
		},
	},
	{
		Name:    "run",
		Pattern: regexp.MustCompile(`\bpnpm run `),
		Replace: map[models.PackageManager]string{
			models.PackageManagerNpm: "npm run ",
			models.PackageManagerBun: "bun run ",
		},
	},
	{
		Name:    "install",
		Pattern: regexp.MustCompile(`\bpnpm (install|add|remove)\b`),
		Replace: map[models.PackageManager]string{
			models.PackageManagerNpm: "npm ${1}",
			models.PackageManagerBun: "bun ${1}",
		},
	},
}

var invocation = regexp.MustCompile(`(^|[\s;&|(])pnpm([ \t]+)([^\s;&|()]+)`)

// RewriteInvocations rewrites the pnpm invocations ScriptRules left alone.
// "pnpm <name>" becomes a run of the script when name is one of scripts;
// any other invocation keeps its arguments and only swaps the executable.
func RewriteInvocations(cmd string, m models.PackageManager, scripts map[string]bool) string {
	if m.IsNative() || !m.IsValid() {
		return cmd
	}
	return invocation.ReplaceAllStringFunc(cmd, func(match string) string {
		sub := invocation.FindStringSubmatch(match)
		if scripts[sub[3]] {
			return sub[1] + m.RunCommand(sub[3])
		}
		return sub[1] + m.String() + sub[2] + sub[3]
	})
}
