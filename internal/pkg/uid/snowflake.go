package uid

import (
	"strconv"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates 63-bit time ordered ids for a single node.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake returns a generator bound to node (0-1023).
func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: n}, nil
}

// Generate returns the next id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}

// GenerateString returns the next id in base 10.
func (s *Snowflake) GenerateString() string {
	return strconv.FormatInt(s.Generate(), 10)
}
