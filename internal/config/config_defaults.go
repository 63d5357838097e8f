package config

// Default returns the built-in configuration: a dir-backed store under
// ./content, themes under ./themes and assets under ./assets, serving
// on localhost.
func Default() *Config {
	return &Config{
		ServerAddress: "127.0.0.1:8080",

		StoreBackend:  StoreBackendDir,
		StoreRoot:     "content",
		StoreBoltPath: "pagemason.db",

		ThemesRoot: "themes",
		ThemeName:  "default",

		AssetsRoot:  "assets",
		UploadsRoot: "uploads",
	}
}
