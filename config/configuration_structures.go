package config

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	Issuer          string `yaml:"issuer"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
}

// AdminConfig : учётная запись администратора, создаваемая при старте,
// если пользователя с таким email ещё нет
type AdminConfig struct {
	Email    string `yaml:"email"`
	FullName string `yaml:"full_name"`
	Password string `yaml:"password"`
}

// RateLimitConfig : ограничение частоты попыток входа (fixed window)
type RateLimitConfig struct {
	LoginAttempts int    `yaml:"login_attempts"`
	LoginWindow   string `yaml:"login_window"`
}
