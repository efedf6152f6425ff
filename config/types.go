package config

// ServerConfig contains API server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// SourceConfig describes one upstream feed endpoint
type SourceConfig struct {
	BaseURL   string `yaml:"baseURL" validate:"required,url"`
	TimeoutMS int    `yaml:"timeoutMS" validate:"gte=0"`
	Attempts  int    `yaml:"attempts" validate:"gte=0"`
}

// SourcesConfig groups the three upstream feeds
type SourcesConfig struct {
	Bilbobus  SourceConfig `yaml:"bilbobus" validate:"required"`
	Euskadi   SourceConfig `yaml:"euskadi" validate:"required"`
	Euskotren SourceConfig `yaml:"euskotren" validate:"required"`
}

// EuskotrenConfig contains rail-feed query parameters: the bounding box
// sent with position queries and the route-color class to keep.
type EuskotrenConfig struct {
	RouteColor string  `yaml:"routeColor"`
	MinLat     float64 `yaml:"minLat"`
	MinLon     float64 `yaml:"minLon"`
	MaxLat     float64 `yaml:"maxLat"`
	MaxLon     float64 `yaml:"maxLon"`
	WindowSec  int     `yaml:"windowSec" validate:"gte=0"`
}

// CacheConfig contains freshness windows
type CacheConfig struct {
	ArrivalsTTLMS int `yaml:"arrivalsTTLMS" validate:"gte=0"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server    ServerConfig    `yaml:"server" validate:"required"`
	Sources   SourcesConfig   `yaml:"sources" validate:"required"`
	Euskotren EuskotrenConfig `yaml:"euskotren"`
	Cache     CacheConfig     `yaml:"cache"`
}
