// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/attrs.go
// Summary: Config knobs for the attribute pool allocator.

package config

const (
	defaultInitialNodes = 16
	defaultMaxNodes     = 1 << 20
)

func applyAttrsDefaults(cfg Config) {
	cfg.RegisterDefaults("attrs", Section{
		"initial_nodes": defaultInitialNodes,
		"max_nodes":     defaultMaxNodes,
	})
}

// AttrsInitialNodes returns the configured initial node count for a new
// attribute pool, falling back to the built-in default.
func AttrsInitialNodes() int {
	return System().GetInt("attrs", "initial_nodes", defaultInitialNodes)
}

// AttrsMaxNodes returns the configured upper bound on pool nodes, falling
// back to the built-in default.
func AttrsMaxNodes() int {
	return System().GetInt("attrs", "max_nodes", defaultMaxNodes)
}
