package index

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/twine/internal/core/ports"
)

// NodeID is the unique identifier for the render index Graft node.
const NodeID graft.ID = "adapter.render_index"

func init() {
	graft.Register(graft.Node[ports.RecordStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RecordStore, error) {
			return NewStore(DefaultPath)
		},
	})
}
