// Package config loads service configuration with Viper.
//
// Values come from a YAML file (./cmd/<service>/config.yml by default),
// an optional .env file loaded with godotenv, and the process environment.
// Environment variables use the upper-case underscore form of the key:
// audio.max_size_mb is overridden by AUDIO_MAX_SIZE_MB.
//
// # Usage
//
//	var cfg app.Config
//	if err := config.LoadConfig("voxscribe", &cfg); err != nil { ... }
package config
