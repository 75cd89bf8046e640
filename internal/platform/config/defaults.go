package config

import "time"

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			IP:        "0.0.0.0",
			Port:      8070,
			StaticDir: "./web",
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "logs",
			File:  "comicstore.log",
		},
		Backend: BackendConfig{
			AuthURL:     "http://localhost:8080/api",
			ProductsURL: "http://localhost:5000/api",
			Timeout:     10 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			SQLite: StorageSQLiteConfig{
				DSN: "comicstore.db",
			},
		},
	}
}
