package app

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/viant/afs"
	"go.trai.ch/twine/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/adapters/index"   //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/adapters/remote"  //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/twine/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			index.NodeID,
			logger.NodeID,
			fs.WalkerNodeID,
			remote.ServiceNodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.RecordStore](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	walker, err := graft.Dep[*fs.Walker](ctx)
	if err != nil {
		return nil, err
	}

	storage, err := graft.Dep[afs.Service](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, store, log, walker, storage).WithWatcher(w), nil
}
