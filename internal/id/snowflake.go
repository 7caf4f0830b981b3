// Package id generates time-ordered event ids.
package id

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out snowflake ids that are unique per node and increase
// with time.
type Generator struct {
	node *snowflake.Node
}

// NewGenerator creates a generator for the given node id (0-1023).
func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

// Next returns a new id.
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}
