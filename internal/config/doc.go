// Package config provides configuration structures and utilities for the
// community graph tool. It defines the GraphQL API settings, fetch
// behavior, presentation threshold and output preferences, and loads the
// optional YAML configuration file.
package config
