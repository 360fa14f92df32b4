// Package store persists run audit records - run status, per-type scaling
// weights, and stage durations - to a relational database through GORM.
package store

// DatabaseConfig describes one datasource. The Type field selects the
// registered dialector; the rest feeds its DSN builder.
type DatabaseConfig struct {
	Type     string `mapstructure:"type" yaml:"type"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`

	Pool PoolConfig `mapstructure:"pool" yaml:"pool"`
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxOpenConns           int `mapstructure:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns           int `mapstructure:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetimeMinutes int `mapstructure:"connMaxLifetimeMinutes" yaml:"connMaxLifetimeMinutes"`
}
