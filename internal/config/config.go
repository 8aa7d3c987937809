package config

// Config holds server configuration values.
type Config struct {
	Addr                string   `mapstructure:"addr" yaml:"addr"`
	MaxClients          int      `mapstructure:"max_clients" yaml:"max_clients"`
	RoomMaxCapacity     int      `mapstructure:"room_max_capacity" yaml:"room_max_capacity"`
	RoomDefaultCapacity int      `mapstructure:"room_default_capacity" yaml:"room_default_capacity"`
	AuditLogPath        string   `mapstructure:"audit_log_path" yaml:"audit_log_path"`
	AuditDBPath         string   `mapstructure:"audit_db_path" yaml:"audit_db_path"`
	AdminPassword       string   `mapstructure:"admin_password" yaml:"admin_password"`
	Admins              []string `mapstructure:"admins" yaml:"admins"`
	StatusAddr          string   `mapstructure:"status_addr" yaml:"status_addr"`
	LogLevel            string   `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with the protocol's historical defaults:
// port 1234, 100 worker slots, rooms capped at 10 with 5 seats by
// default, password "1234".
func Default() Config {
	return Config{
		Addr:                ":1234",
		MaxClients:          100,
		RoomMaxCapacity:     10,
		RoomDefaultCapacity: 5,
		AuditLogPath:        "servidor.log",
		AuditDBPath:         "",
		AdminPassword:       "1234",
		Admins:              nil,
		StatusAddr:          "",
		LogLevel:            "info",
	}
}
