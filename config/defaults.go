// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values for system and app configuration files.

package config

func applySystemDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults("", Section{
		"defaultApp": "sgr-demo",
	})
	applyAttrsDefaults(cfg)
}

func applyAppDefaults(app string, cfg Config) {
	if cfg == nil {
		return
	}
}
