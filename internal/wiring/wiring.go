// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/twine/internal/adapters/config"
	_ "go.trai.ch/twine/internal/adapters/fs"
	_ "go.trai.ch/twine/internal/adapters/index"
	_ "go.trai.ch/twine/internal/adapters/logger"
	_ "go.trai.ch/twine/internal/adapters/remote"
	_ "go.trai.ch/twine/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/twine/internal/app"
)
