package config

type HTTP struct {
	Port uint32 `env:"HTTP_PORT" envDefault:"8080"`
	// Swagger toggles the /docs UI. Disable it on internet-facing deployments.
	Swagger bool `env:"HTTP_SWAGGER" envDefault:"true"`
}
