package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	tests := []struct {
		name string
		want Forms
	}{
		{
			name: "acme-app",
			want: Forms{Kebab: "acme-app", Camel: "acmeApp", Pascal: "AcmeApp", Snake: "acme_app", Constant: "ACME_APP", Title: "Acme App"},
		},
		{
			name: "build-elevate",
			want: Forms{Kebab: "build-elevate", Camel: "buildElevate", Pascal: "BuildElevate", Snake: "build_elevate", Constant: "BUILD_ELEVATE", Title: "Build Elevate"},
		},
		{
			name: "@acme/web_shop",
			want: Forms{Kebab: "web-shop", Camel: "webShop", Pascal: "WebShop", Snake: "web_shop", Constant: "WEB_SHOP", Title: "Web Shop"},
		},
		{
			name: "app",
			want: Forms{Kebab: "app", Camel: "app", Pascal: "App", Snake: "app", Constant: "APP", Title: "App"},
		},
		{
			name: "web-2x",
			want: Forms{Kebab: "web-2x", Camel: "web_2x", Pascal: "Web_2x", Snake: "web_2x", Constant: "WEB_2X", Title: "Web 2x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Of(tt.name))
		})
	}
}

func TestForms_RoundTrip(t *testing.T) {
	names := []string{"acme-app", "a-b-c", "my.app", "app2-web", "2fast-2furious", "x", "hello_world-again", "@scope/pkg-name"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			forms := Of(name)

			require.Equal(t, forms.Kebab, Of(forms.Pascal).Kebab, "kebab -> Pascal -> kebab")
			require.Equal(t, forms.Kebab, Of(forms.Camel).Kebab, "kebab -> camel -> kebab")
			require.Equal(t, forms.Kebab, Of(forms.Snake).Kebab, "kebab -> snake -> kebab")
			require.Equal(t, forms.Kebab, Of(forms.Title).Kebab, "kebab -> Title -> kebab")
			require.Equal(t, strings.ToUpper(forms.Snake), forms.Constant)
			require.Equal(t, forms, Of(forms.Kebab))
		})
	}
}

func TestReplacements_LongestFirst(t *testing.T) {
	pairs := Replacements(Of("build-elevate"), Of("acme-app"))
	require.Len(t, pairs, 6)
	for i := 1; i < len(pairs); i++ {
		require.GreaterOrEqual(t, len(pairs[i-1].From), len(pairs[i].From))
	}
}

func TestReplacements_DeduplicatesEqualForms(t *testing.T) {
	pairs := Replacements(Of("app"), Of("web"))
	// "app", "App" and "APP" are the only distinct forms
	require.Len(t, pairs, 3)
}

func TestReplaceAll(t *testing.T) {
	pairs := Replacements(Of("build-elevate"), Of("acme-app"))
	in := `{"name": "@build-elevate/web"}
export const BuildElevateLogo = () => null;
const buildElevateConfig = {};
BUILD_ELEVATE_API_URL=http://localhost
# Build Elevate
db: build_elevate`
	want := `{"name": "@acme-app/web"}
export const AcmeAppLogo = () => null;
const acmeAppConfig = {};
ACME_APP_API_URL=http://localhost
# Acme App
db: acme_app`

	require.Equal(t, want, ReplaceAll(in, pairs))
}

func TestReplaceAll_Idempotent(t *testing.T) {
	for _, name := range []string{"acme-app", "build-elevate-pro", "my-build-elevate"} {
		t.Run(name, func(t *testing.T) {
			pairs := Replacements(Of("build-elevate"), Of(name))
			in := "build-elevate BuildElevate buildElevate build_elevate BUILD_ELEVATE Build Elevate"

			once := ReplaceAll(in, pairs)
			twice := ReplaceAll(once, pairs)
			require.Equal(t, once, twice)
			require.NotContains(t, strings.ReplaceAll(once, Of(name).Kebab, ""), "build-elevate")
		})
	}
}
