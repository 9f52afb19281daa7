package routing

const (
	TRIVIAL_ROUTE_WARNING   = "origin and destination are too close; returning direct route"
	SAME_NODE_ROUTE_WARNING = "origin and destination resolve to the same road node"

	DEFAULT_SNAP_CACHE_SIZE = 1 << 14
)
