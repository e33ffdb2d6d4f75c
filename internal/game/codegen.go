package game

import (
	"math/rand/v2"
	"sync"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 4

// CodeGenerator hands out short room codes that are unique among live
// rooms. Dispose returns a code to the pool once its room is gone.
type CodeGenerator struct {
	mu    sync.Mutex
	taken map[string]struct{}
}

func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{taken: make(map[string]struct{})}
}

func (g *CodeGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		buf := make([]byte, codeLength)
		for i := range buf {
			buf[i] = codeCharset[rand.IntN(len(codeCharset))]
		}
		code := string(buf)
		if _, exists := g.taken[code]; !exists {
			g.taken[code] = struct{}{}
			return code
		}
	}
}

func (g *CodeGenerator) Dispose(code string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.taken, code)
}
