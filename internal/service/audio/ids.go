package audio

import (
	"fmt"
	"sync/atomic"
)

// IDGenerator issues recording ids scoped to a session.
type IDGenerator struct {
	counter uint64
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

func (g *IDGenerator) Next(sessionId string) string {
	n := atomic.AddUint64(&g.counter, 1)
	return fmt.Sprintf("%s-rec-%d", sessionId, n)
}
