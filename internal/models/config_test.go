package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProjectConfig_Directory(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{name: "acme-app", expected: "acme-app"},
		{name: "@acme/app", expected: "app"},
		{name: "@acme", expected: "@acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ProjectConfig{Name: tt.name}.Directory())
		})
	}
}

func TestProjectConfig_WithDefaults(t *testing.T) {
	cfg := ProjectConfig{Name: "acme-app", Template: "  "}.WithDefaults()

	require.Equal(t, VariantFull, cfg.Variant)
	require.Equal(t, PackageManagerPnpm, cfg.PackageManager)
	require.Equal(t, DefaultTemplate, cfg.Template)
	// booleans are left alone
	require.False(t, cfg.IncludeDocker)

	cfg = ProjectConfig{Variant: VariantBackendOnly, PackageManager: PackageManagerBun, Template: "/tmp/tpl"}.WithDefaults()
	require.Equal(t, VariantBackendOnly, cfg.Variant)
	require.Equal(t, PackageManagerBun, cfg.PackageManager)
	require.Equal(t, "/tmp/tpl", cfg.Template)
}

func TestDefaultProjectConfig(t *testing.T) {
	cfg := DefaultProjectConfig()

	require.True(t, cfg.IncludeDocker)
	require.True(t, cfg.IncludeStudio)
	require.True(t, cfg.IncludeDocs)
	require.True(t, cfg.InitGit)
	require.False(t, cfg.SkipInstall)
	require.Empty(t, cfg.Name)
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		input    string
		expected Variant
		wantErr  bool
	}{
		{input: "full", expected: VariantFull},
		{input: " Frontend-Only ", expected: VariantFrontendOnly},
		{input: "backend-only", expected: VariantBackendOnly},
		{input: "mobile", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseVariant(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, v)
		})
	}
}

func TestVariant_Apps(t *testing.T) {
	require.True(t, VariantFull.HasFrontend())
	require.True(t, VariantFull.HasBackend())
	require.True(t, VariantFrontendOnly.HasFrontend())
	require.False(t, VariantFrontendOnly.HasBackend())
	require.False(t, VariantBackendOnly.HasFrontend())
	require.True(t, VariantBackendOnly.HasBackend())
}

func TestParsePackageManager(t *testing.T) {
	m, err := ParsePackageManager("NPM")
	require.NoError(t, err)
	require.Equal(t, PackageManagerNpm, m)

	_, err = ParsePackageManager("yarn")
	require.Error(t, err)
}

func TestPackageManager_Commands(t *testing.T) {
	tests := []struct {
		manager   PackageManager
		run       string
		install   string
		workspace bool
		catalogs  bool
	}{
		{PackageManagerPnpm, "pnpm dev", "pnpm install", true, true},
		{PackageManagerNpm, "npm run dev", "npm install", false, false},
		{PackageManagerBun, "bun run dev", "bun install", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.manager.String(), func(t *testing.T) {
			require.Equal(t, tt.run, tt.manager.RunCommand("dev"))
			require.Equal(t, tt.install, tt.manager.InstallCommand())
			require.Equal(t, tt.workspace, tt.manager.SupportsWorkspaceProtocol())
			require.Equal(t, tt.catalogs, tt.manager.SupportsCatalogs())
			require.Equal(t, tt.manager == PackageManagerPnpm, tt.manager.IsNative())
		})
	}
}

func TestPackageManager_Identifier(t *testing.T) {
	require.Equal(t, "pnpm@10.18.0", PackageManagerPnpm.Identifier())
	require.Equal(t, "npm@10.9.3", PackageManagerNpm.Identifier())
	require.Equal(t, "bun@1.2.22", PackageManagerBun.Identifier())
	require.Equal(t, "8.0.0", PackageManagerNpm.MinimumVersion())
}

func TestVariant_Summary(t *testing.T) {
	seen := make(map[string]bool)
	for _, v := range Variants {
		require.NotEmpty(t, v.Summary())
		require.NotEmpty(t, v.Description())
		seen[v.Summary()] = true
	}
	require.Len(t, seen, len(Variants))
	require.Contains(t, VariantBackendOnly.Summary(), "Express")
	require.NotContains(t, VariantFrontendOnly.Summary(), "Express")
}

func TestDefaultName(t *testing.T) {
	require.Equal(t, "my-app", DefaultName)
	require.Equal(t, DefaultName, ProjectConfig{Name: DefaultName}.Directory())
}
