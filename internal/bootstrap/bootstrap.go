// Package bootstrap assembles the machine from configuration. Both binaries
// share it.
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fairyhunter13/vending-machine-simulator/internal/admin"
	"github.com/fairyhunter13/vending-machine-simulator/internal/catalog"
	"github.com/fairyhunter13/vending-machine-simulator/internal/config"
	"github.com/fairyhunter13/vending-machine-simulator/internal/machine"
	"github.com/fairyhunter13/vending-machine-simulator/internal/obs"
)

// Machine is a ready-to-serve engine plus the admin gate guarding it.
type Machine struct {
	Engine *machine.Engine
	Auth   *admin.Authenticator
}

// New seeds the catalog and builds the authenticator. A configured password
// hash wins over the plain password.
func New(cfg config.Config) (*Machine, error) {
	seed, err := catalog.LoadSeedFile(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	products, err := catalog.New(seed...)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	var auth *admin.Authenticator
	if cfg.AdminPasswordHash != "" {
		auth, err = admin.NewAuthenticatorFromHash(cfg.AdminPasswordHash)
	} else {
		auth, err = admin.NewAuthenticator(cfg.AdminPassword, cfg.BcryptCost)
	}
	if err != nil {
		return nil, err
	}
	e := machine.NewEngine(machine.NewState(products))
	obs.Logger.Info("machine_ready",
		zap.Int("products", products.Len()),
		zap.String("catalog_file", cfg.CatalogFile),
		zap.Bool("hashed_secret", cfg.AdminPasswordHash != ""),
	)
	return &Machine{Engine: e, Auth: auth}, nil
}
