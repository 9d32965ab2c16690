// Package config provides configuration management for the Liftwise assistant.
//
// # Overview
//
// The config package uses Viper to load configuration from YAML files and
// environment variables. It provides a type-safe configuration structure with
// validation, default values, and automatic file creation.
//
// # Configuration File
//
// The configuration is stored at ~/.liftwise/config.yaml and is automatically
// created with sensible defaults on first use. The file structure mirrors
// the Go structs defined in this package.
//
// # Environment Variables
//
// All configuration values can be overridden using environment variables
// with the LIFTWISE_ prefix. Nested fields are separated by underscores.
//
// Examples:
//   - LIFTWISE_HEVY_API_KEY=hevy_...
//   - LIFTWISE_LLM_DEFAULT_PROVIDER=openai
//   - LIFTWISE_LLM_PROVIDERS_OPENAI_API_KEY=sk-...
//   - LIFTWISE_LOGGING_LEVEL=debug
//
// # Security
//
// API keys should be stored in environment variables rather than in the
// config file to prevent accidental exposure. The default config file is
// written with empty key fields.
package config
