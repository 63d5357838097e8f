// autoconfig provides a way to create the application's collaborators
// from [config.Config]: the logger, theme registry, document store,
// asset gateway and server.
//
// For example, to get a [store.Store], you can write:
//
//	autoconfig.Invoke(func(s store.Store) error {
//	    ...
//	})
//
// Treat it as a dependency injection mechanism.
package autoconfig

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/pagemason/pagemason/internal/config"
	"github.com/pagemason/pagemason/internal/log"
	"github.com/pagemason/pagemason/internal/server"
	"github.com/pagemason/pagemason/pkg/asset"
	"github.com/pagemason/pagemason/pkg/store"
	"github.com/pagemason/pagemason/pkg/theme"
)

var container = dig.New()

// CLIOptions carries the values of the root command's persistent
// flags into the container. Commands set them before the first Invoke.
type CLIOptions struct {
	ConfigFile string
	Verbose    bool
}

var cliOptions CLIOptions

// SetCLIOptions must be called before the first Invoke; later calls
// have no effect on already-built dependencies.
func SetCLIOptions(opts CLIOptions) {
	cliOptions = opts
}

// Invoke is used to invoke the function with the given dependencies.
// The package will automatically figure out how to instantiate them
// using the available configuration.
func Invoke(function interface{}, opts ...dig.InvokeOption) error {
	err := container.Invoke(function, opts...)
	return dig.RootCause(err)
}

func mustProvide(err error) {
	if err != nil {
		panic("failed to provide: " + err.Error())
	}
}

func init() {
	mustProvide(container.Provide(getCLIOptions))
	mustProvide(container.Provide(getConfig))
	mustProvide(container.Provide(getLogger))
	mustProvide(container.Provide(getThemeDir))
	mustProvide(container.Provide(getRegistry))
	mustProvide(container.Provide(getStore))
	mustProvide(container.Provide(getGateway))
	mustProvide(container.Provide(getServer))
}

func getCLIOptions() *CLIOptions {
	return &cliOptions
}

func getConfig(opts *CLIOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		cfg.LogEnabled = true
		cfg.LogVerbose = true
	}
	return cfg, nil
}

func getLogger(cfg *config.Config) (*zap.Logger, error) {
	return log.New(log.Options{
		Enabled: cfg.LogEnabled,
		Verbose: cfg.LogVerbose,
		Path:    cfg.LogPath,
	})
}

func getThemeDir(cfg *config.Config, logger *zap.Logger) *theme.Dir {
	return theme.NewDirAt(cfg.ThemesRoot, theme.WithLogger(logger))
}

func getRegistry(cfg *config.Config, dir *theme.Dir, logger *zap.Logger) (*theme.Registry, error) {
	catalog, err := dir.BuildCatalog(cfg.ThemeName)
	if catalog == nil {
		return nil, err
	}
	if err != nil {
		logger.Warn("theme catalog built with errors", zap.String("theme", cfg.ThemeName), zap.Error(err))
	}
	return theme.NewRegistry(cfg.ThemeName, catalog), nil
}

func getStore(cfg *config.Config, registry *theme.Registry, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendBolt:
		return store.NewBoltStore(cfg.StoreBoltPath, registry, store.WithLogger(logger))
	default:
		return store.NewDirStoreAt(cfg.StoreRoot, registry, store.WithLogger(logger)), nil
	}
}

func getGateway(cfg *config.Config, logger *zap.Logger) *asset.Gateway {
	return asset.NewGatewayAt(cfg.AssetsRoot, cfg.UploadsRoot, asset.WithLogger(logger))
}

func getServer(
	cfg *config.Config,
	s store.Store,
	dir *theme.Dir,
	registry *theme.Registry,
	gateway *asset.Gateway,
	logger *zap.Logger,
) (*server.Server, error) {
	return server.New(server.Config{
		Address:  cfg.ServerAddress,
		Store:    s,
		ThemeDir: dir,
		Registry: registry,
		Gateway:  gateway,
		Logger:   logger,
	})
}
