// Package config loads typed configuration from the process environment.
//
// Struct fields are mapped with github.com/caarlos0/env tags. Before the first
// load a .env file in the working directory is read with
// github.com/joho/godotenv when it exists; variables already present in the
// environment win.
//
//	type Config struct {
//		Mode string `env:"TENANCY_MODE" envDefault:"subdomain"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Load caches the parsed value per Go type, so every component asking for the
// same struct sees one consistent snapshot. Parse skips the cache and is what
// tests use together with t.Setenv.
package config
