package validate

import (
	"context"

	"github.com/jakoblorz/create-stack/internal/models"
	"golang.org/x/sync/errgroup"
)

// ManagerPreference is the order an unchosen package manager is picked in.
var ManagerPreference = []models.PackageManager{
	models.PackageManagerPnpm,
	models.PackageManagerBun,
	models.PackageManagerNpm,
}

// InstalledManagers reports the package managers tools can find, in
// ManagerPreference order.
func InstalledManagers(ctx context.Context, tools ToolChecker) []models.PackageManager {
	found := make([]bool, len(ManagerPreference))

	g, ctx := errgroup.WithContext(ctx)
	for i, m := range ManagerPreference {
		g.Go(func() error {
			_, err := tools.Version(ctx, m.String())
			found[i] = err == nil
			return nil
		})
	}
	_ = g.Wait()

	var installed []models.PackageManager
	for i, m := range ManagerPreference {
		if found[i] {
			installed = append(installed, m)
		}
	}
	return installed
}

// NoManagerError is returned when none of the supported package managers
// is installed.
func NoManagerError() *Error {
	return newError("package-manager", "Install pnpm, bun or npm.", "no supported package manager found")
}
