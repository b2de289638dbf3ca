package remote

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/viant/afs"
)

// ServiceNodeID is the unique identifier for the storage service Graft node.
const ServiceNodeID graft.ID = "adapter.remote.afs"

func init() {
	graft.Register(graft.Node[afs.Service]{
		ID:        ServiceNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (afs.Service, error) {
			return afs.New(), nil
		},
	})
}
