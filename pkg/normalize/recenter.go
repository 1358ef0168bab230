package normalize

import (
	"fmt"
	"strings"

	"github.com/philipparndt/modelfit/pkg/geometry"
	"github.com/philipparndt/modelfit/pkg/mesh"
)

// Strategy selects how Recenter moves the positions
type Strategy int

const (
	// StrategyNative uses the buffer's own bulk Translate operation
	StrategyNative Strategy = iota
	// StrategyPerVertex subtracts the center from each position explicitly
	StrategyPerVertex
)

func (s Strategy) String() string {
	switch s {
	case StrategyNative:
		return "native"
	case StrategyPerVertex:
		return "per-vertex"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses the names produced by Strategy.String
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "native":
		return StrategyNative, nil
	case "per-vertex", "pervertex", "manual":
		return StrategyPerVertex, nil
	default:
		return StrategyNative, fmt.Errorf("unknown recenter strategy %q (expected native or per-vertex)", name)
	}
}

// Translator is implemented by geometry representations that can move all of
// their points at once.
type Translator interface {
	Translate(offset geometry.Vector3)
}

// Recenter shifts every position by -center. Only Positions is touched.
// Both strategies produce identical results. Empty buffers are left alone.
func Recenter(buf *mesh.VertexBuffer, center geometry.Vector3, strategy Strategy) {
	if buf == nil || buf.VertexCount() == 0 {
		return
	}

	if strategy == StrategyNative {
		var t Translator = buf
		t.Translate(center.Neg())
		return
	}

	for i, p := range buf.Positions {
		buf.Positions[i] = p.Sub(center)
	}
}
