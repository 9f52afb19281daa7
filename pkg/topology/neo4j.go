package topology

import (
	"context"
	"fmt"

	"github.com/lintang-b-s/Congestionx/pkg/network"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

const DEFAULT_NEO4J_BATCH_SIZE = 1000

const (
	mergeNodesCypher = `UNWIND $rows AS row
MERGE (n:RoadNode {network: $network, id: row.id})
SET n.x = row.x, n.y = row.y`

	mergeEdgesCypher = `UNWIND $rows AS row
MATCH (a:RoadNode {network: $network, id: row.node_a}), (b:RoadNode {network: $network, id: row.node_b})
MERGE (a)-[r:ROAD {network: $network, id: row.id}]->(b)
SET r.segment_id = row.segment_id, r.kind = row.kind, r.base_length = row.base_length,
    r.lanes = row.lanes, r.speed_limit = row.speed_limit`

	mergeIntersectionsCypher = `UNWIND $rows AS row
MERGE (i:Intersection {network: $network, x: row.x, y: row.y})`

	mergeFeaturesCypher = `UNWIND $rows AS row
MERGE (f:RoadFeature {network: $network, id: row.id})
SET f.kind = row.kind, f.start_x = row.start_x, f.start_y = row.start_y, f.end_x = row.end_x, f.end_y = row.end_y`
)

// result is the part of a neo4j result the writer needs.
type result interface {
	Next(ctx context.Context) bool
	Err() error
}

// runner is the part of a neo4j session the writer needs.
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (result, error)
	Close(ctx context.Context) error
}

type neo4jSessionAdapter struct {
	sess neo4j.SessionWithContext
}

func (a *neo4jSessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (result, error) {
	return a.sess.Run(ctx, cypher, params)
}

func (a *neo4jSessionAdapter) Close(ctx context.Context) error {
	return a.sess.Close(ctx)
}

type WriteStats struct {
	Nodes         int
	Edges         int
	Intersections int
	Features      int
}

// Neo4jWriter persists a topology as (:RoadNode)-[:ROAD]->(:RoadNode). writes are MERGEs keyed by network name
// and id, so writing the same topology twice is a no-op.
type Neo4jWriter struct {
	driver     neo4j.DriverWithContext
	database   string
	batchSize  int
	log        *zap.Logger
	newSession func(ctx context.Context) runner
}

func NewNeo4jWriter(driver neo4j.DriverWithContext, database string, log *zap.Logger) *Neo4jWriter {
	return &Neo4jWriter{
		driver:    driver,
		database:  database,
		batchSize: DEFAULT_NEO4J_BATCH_SIZE,
		log:       log,
	}
}

func (w *Neo4jWriter) session(ctx context.Context) runner {
	if w.newSession != nil {
		return w.newSession(ctx)
	}
	return &neo4jSessionAdapter{sess: w.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: w.database})}
}

func (w *Neo4jWriter) Write(ctx context.Context, name string, net *network.Network) (WriteStats, error) {
	sess := w.session(ctx)
	defer sess.Close(ctx)

	nodes := make([]any, 0, len(net.Nodes))
	for _, n := range net.Nodes {
		nodes = append(nodes, map[string]any{"id": int64(n.ID), "x": n.Position.X, "y": n.Position.Y})
	}
	edges := make([]any, 0, len(net.Edges))
	for _, e := range net.Edges {
		edges = append(edges, map[string]any{
			"id":          int64(e.ID),
			"node_a":      int64(e.NodeA),
			"node_b":      int64(e.NodeB),
			"segment_id":  e.SegmentID,
			"kind":        e.Kind.String(),
			"base_length": e.BaseLength,
			"lanes":       int64(e.Lanes),
			"speed_limit": e.SpeedLimit,
		})
	}
	intersections := make([]any, 0, len(net.Intersections))
	for _, p := range net.Intersections {
		intersections = append(intersections, map[string]any{"x": p.X, "y": p.Y})
	}
	features := make([]any, 0, len(net.Features))
	for _, f := range net.Features {
		features = append(features, map[string]any{
			"id":      f.ID,
			"kind":    f.Kind.String(),
			"start_x": f.Start.X,
			"start_y": f.Start.Y,
			"end_x":   f.End.X,
			"end_y":   f.End.Y,
		})
	}

	stats := WriteStats{}
	// nodes before edges, edges MATCH their endpoints
	steps := []struct {
		what   string
		cypher string
		rows   []any
		count  *int
	}{
		{"nodes", mergeNodesCypher, nodes, &stats.Nodes},
		{"edges", mergeEdgesCypher, edges, &stats.Edges},
		{"intersections", mergeIntersectionsCypher, intersections, &stats.Intersections},
		{"features", mergeFeaturesCypher, features, &stats.Features},
	}
	for _, step := range steps {
		n, err := w.runBatches(ctx, sess, step.cypher, name, step.rows)
		*step.count = n
		if err != nil {
			return stats, fmt.Errorf("write %s: %w", step.what, err)
		}
	}

	w.log.Info("topology written to neo4j", zap.String("network", name),
		zap.Int("nodes", stats.Nodes), zap.Int("edges", stats.Edges))
	return stats, nil
}

func (w *Neo4jWriter) runBatches(ctx context.Context, sess runner, cypher, name string, rows []any) (int, error) {
	written := 0
	for lo := 0; lo < len(rows); lo += w.batchSize {
		hi := min(lo+w.batchSize, len(rows))
		res, err := sess.Run(ctx, cypher, map[string]any{"network": name, "rows": rows[lo:hi]})
		if err != nil {
			return written, err
		}
		for res.Next(ctx) {
		}
		if err := res.Err(); err != nil {
			return written, err
		}
		written = hi
	}
	return written, nil
}
