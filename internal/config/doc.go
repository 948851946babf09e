// Package config loads and validates dashboard realtime configuration.
//
// Configuration is a YAML file with ${VAR} environment expansion. Optional
// fields receive defaults via LoadWithDefaults; LoadAndValidate additionally
// rejects configs that cannot produce a working session.
package config
