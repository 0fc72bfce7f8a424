package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 100
	// MaxLimit caps how many rows any offset query can request.
	MaxLimit = 1000
)

// Params holds skip/limit pagination inputs from controllers or services.
type Params struct {
	Skip  int
	Limit int
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizeSkip clamps negative offsets to zero.
func NormalizeSkip(skip int) int {
	if skip < 0 {
		return 0
	}
	return skip
}

// Normalize returns a copy of p with both bounds applied.
func (p Params) Normalize() Params {
	return Params{Skip: NormalizeSkip(p.Skip), Limit: NormalizeLimit(p.Limit)}
}
