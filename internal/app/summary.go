package app

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/vk/nnpipe/internal/hclconfig"
	"github.com/vk/nnpipe/internal/pipeline"
)

// writeSummary prints what was compiled: nodes by declared name, links,
// the runtime release and the checksum of every asset.
func writeSummary(w io.Writer, res *hclconfig.Result, bundle *pipeline.Bundle, path string, size int) error {
	schema := bundle.Schema
	names := make(map[int64]string, len(res.Nodes))
	for name, n := range res.Nodes {
		names[n.ID()] = name
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Pipeline compiled for runtime %s: %d nodes, %d links\n",
		schema.RuntimeVersion, len(schema.Nodes), len(schema.Connections))
	for _, n := range schema.Nodes {
		fmt.Fprintf(tw, "  node\t%d\t%s\t%s\n", n.ID, names[n.ID], n.Name)
	}
	for _, c := range schema.Connections {
		fmt.Fprintf(tw, "  link\t%s.%s\t->\t%s.%s\n", names[c.OutputNode], c.Output, names[c.InputNode], c.Input)
	}

	sums := bundle.AssetChecksums()
	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(tw, "  asset\t%s\txxh64:%s\n", k, sums[k])
	}
	fmt.Fprintf(tw, "Bundle written to %s (%d bytes)\n", path, size)
	return tw.Flush()
}
