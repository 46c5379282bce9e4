// Package config holds the listat configuration and the YAML sources file.
package config
