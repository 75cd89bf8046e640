package config

import (
	"time"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Backend BackendConfig `yaml:"backend"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig describes the storefront gateway listener.
type ServerConfig struct {
	IP        string `yaml:"ip"`
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// BackendConfig points at the remote services this client consumes: the
// authentication service and the products CRUD API.
type BackendConfig struct {
	AuthURL     string        `yaml:"auth_url"`
	ProductsURL string        `yaml:"products_url"`
	Timeout     time.Duration `yaml:"timeout"`
}

// StorageConfig selects the local blob store driver and its settings.
type StorageConfig struct {
	Driver string              `yaml:"driver"`
	SQLite StorageSQLiteConfig `yaml:"sqlite,omitempty"`
	Redis  StorageRedisConfig  `yaml:"redis,omitempty"`
}

type StorageSQLiteConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

type StorageRedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}
