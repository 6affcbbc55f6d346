package cache

// Key types reported to the cache hooks.
const (
	KeyTypePositions = "positions"
	KeyTypeCollapse  = "collapse"
)

// Keyer derives cache keys for editor state.
type Keyer interface {
	// PositionsKey returns the key of the position cache for a graph.
	PositionsKey(graphID string, opts PositionsKeyOpts) string

	// CollapseKey returns the key of the collapsed set for a graph.
	CollapseKey(graphID string) string
}

// PositionsKeyOpts holds the layout settings that make cached positions
// incompatible with each other.
type PositionsKeyOpts struct {
	Engine string  `json:"engine"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultKeyer hashes graph identity and options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PositionsKey implements Keyer.
func (DefaultKeyer) PositionsKey(graphID string, opts PositionsKeyOpts) string {
	return hashKey(KeyTypePositions, graphID, opts)
}

// CollapseKey implements Keyer.
func (DefaultKeyer) CollapseKey(graphID string) string {
	return hashKey(KeyTypeCollapse, graphID)
}
