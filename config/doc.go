// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// A .env file, when present, supplies environment overrides for the values
// that differ between deployments (ports and upstream base URLs).
package config
