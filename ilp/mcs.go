package ilp

import "github.com/lvlath-labs/terramesh/radio"

// MCSRowsPerLink returns, for every link in ctx's graph, the candidate
// rows AddFlowCapacity and AddSINRClassification build μ variables for —
// every row of the transmitting site's device MCS table. A link whose
// From site has no registered device (e.g. a synthetic demand edge)
// contributes no rows and is left at whatever flow bound AddFlowBalance's
// φ already enforces.
func MCSRowsPerLink(ctx *Context) map[string][]radio.MCSRow {
	out := make(map[string][]radio.MCSRow)
	for _, l := range ctx.Graph.Links() {
		from, to := l.From.String(), l.To.String()
		site, ok := ctx.Graph.Site(l.From)
		if !ok || site.DeviceSKU == "" {
			continue
		}
		dev, ok := ctx.Graph.Device(site.DeviceSKU)
		if !ok || dev.MCSTable == nil {
			continue
		}
		out[from+">"+to] = dev.MCSTable.Rows()
	}
	return out
}
