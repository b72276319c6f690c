package workspace

import "github.com/jakoblorz/create-stack/internal/models"

// EnvFiles lists the files a directory's .env.example is copied to.
type EnvFiles struct {
	Targets []string
	// Production are additional copies made when Docker is included.
	Production []string
}

// Empty reports whether no file is written.
func (e EnvFiles) Empty() bool {
	return len(e.Targets) == 0 && len(e.Production) == 0
}

// App describes one application directory of the template and everything
// other files know about it.
type App struct {
	Name string
	Dir  string
	Env  EnvFiles

	HasDockerfile bool
	// ComposeService is the service block in docker-compose.prod.yml, if any.
	ComposeService string
	// LintEnv lists turbo lint env entries only this app uses. A trailing
	// "*" matches by prefix.
	LintEnv []string
	// Catalogs lists the pnpm catalog sections this app depends on.
	Catalogs []string
}

// Package is a shared workspace package.
type Package struct {
	Name     string
	Dir      string
	Env      EnvFiles
	Catalogs []string
}

// EnvSite is a directory whose .env.example is materialized.
type EnvSite struct {
	Dir string
	EnvFiles
}

var localEnv = EnvFiles{Targets: []string{".env.local"}, Production: []string{".env.production"}}

var packageEnv = EnvFiles{Targets: []string{".env"}, Production: []string{".env.production"}}

var (
	WebApp = App{
		Name:           "web",
		Dir:            "apps/web",
		Env:            localEnv,
		HasDockerfile:  true,
		ComposeService: "web",
		LintEnv:        []string{"NEXT_PUBLIC_*"},
		Catalogs:       []string{"web"},
	}
	APIApp = App{
		Name:           "api",
		Dir:            "apps/api",
		Env:            localEnv,
		HasDockerfile:  true,
		ComposeService: "api",
		LintEnv:        []string{"PORT"},
		Catalogs:       []string{"server"},
	}
	// EmailApp previews the transactional email templates.
	EmailApp = App{
		Name: "email",
		Dir:  "apps/email",
	}
	StudioApp = App{
		Name: "studio",
		Dir:  "apps/studio",
	}
	DocsApp = App{
		Name: "docs",
		Dir:  "apps/docs",
	}
)

// Apps is every application the template may contain, in template order.
var Apps = []App{WebApp, APIApp, EmailApp, StudioApp, DocsApp}

var (
	AuthPackage      = Package{Name: "auth", Dir: "packages/auth"}
	DBPackage        = Package{Name: "db", Dir: "packages/db", Env: packageEnv}
	EmailPackage     = Package{Name: "email", Dir: "packages/email", Env: packageEnv}
	RateLimitPackage = Package{Name: "rate-limit", Dir: "packages/rate-limit", Env: packageEnv}
	UIPackage        = Package{Name: "ui", Dir: "packages/ui", Catalogs: []string{"web"}}
	UtilsPackage     = Package{Name: "utils", Dir: "packages/utils"}
)

// Packages is every shared package of the template.
var Packages = []Package{AuthPackage, DBPackage, EmailPackage, RateLimitPackage, UIPackage, UtilsPackage}

// EnvSites returns every app and package that carries environment files,
// apps first.
func EnvSites() []EnvSite {
	var sites []EnvSite
	for _, app := range Apps {
		if !app.Env.Empty() {
			sites = append(sites, EnvSite{Dir: app.Dir, EnvFiles: app.Env})
		}
	}
	for _, pkg := range Packages {
		if !pkg.Env.Empty() {
			sites = append(sites, EnvSite{Dir: pkg.Dir, EnvFiles: pkg.Env})
		}
	}
	return sites
}

// AppByName looks up a known app.
func AppByName(name string) (App, bool) {
	for _, app := range Apps {
		if app.Name == name {
			return app, true
		}
	}
	return App{}, false
}

// Export is a package export entry that only a removed app imports.
type Export struct {
	Package Package
	Key     string
	// Index is the package entry point that re-exports Key.
	Index string
	// EnvSchema declares the client-side environment of Key. Its client
	// block goes away with the export.
	EnvSchema string
}

// AuthClientExport is the browser half of the auth package.
var AuthClientExport = Export{
	Package:   AuthPackage,
	Key:       "./client",
	Index:     "src/index.ts",
	EnvSchema: "src/keys.ts",
}

// Removal is the set of template directories a variant drops.
type Removal struct {
	Apps     []App
	Packages []Package
	Exports  []Export
}

// RemovalFor returns what the variant removes from the full template. The
// studio and docs apps are optional extras and never part of a variant.
func RemovalFor(variant models.Variant) Removal {
	switch variant {
	case models.VariantBackendOnly:
		return Removal{
			Apps:     []App{WebApp, EmailApp},
			Packages: []Package{UIPackage},
			Exports:  []Export{AuthClientExport},
		}
	case models.VariantFrontendOnly:
		return Removal{
			Apps: []App{APIApp, EmailApp},
		}
	default:
		return Removal{}
	}
}

// Dirs returns the directories of every removed app and package.
func (r Removal) Dirs() []string {
	dirs := make([]string, 0, len(r.Apps)+len(r.Packages))
	for _, app := range r.Apps {
		dirs = append(dirs, app.Dir)
	}
	for _, pkg := range r.Packages {
		dirs = append(dirs, pkg.Dir)
	}
	return dirs
}

// Empty reports whether nothing is removed.
func (r Removal) Empty() bool {
	return len(r.Apps) == 0 && len(r.Packages) == 0 && len(r.Exports) == 0
}
