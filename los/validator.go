package los

import (
	"context"
	"sort"
	"sync"

	"github.com/lvlath-labs/terramesh/geo"
)

// Validate runs the full spec §4.2 pipeline for one ordered site pair:
// easy-reject preconditions, then the configured geometric model, then
// the confidence-threshold accept/reject decision.
func Validate(a, b SiteInfo, dsm geo.DSM, boundary BoundaryPolygon, opts Options) Result {
	res := Result{SiteA: a.ID, SiteB: b.ID}

	if reason, rejected := easyReject(a, b, boundary, opts); rejected {
		res.RejectReason = reason
		return res
	}

	seg := geo.Segment3D{A: a.Position, B: b.Position}

	var confidence float64
	switch opts.Model {
	case ModelEllipsoidal:
		confidence, _ = validateEllipsoidal(seg, dsm, opts.CarrierFrequencyGHz)
	default:
		confidence, _ = validateCylindrical(seg, dsm, opts.FresnelRadiusMeters)
	}

	res.Confidence = confidence
	res.Accepted = confidence >= opts.ConfidenceThreshold
	return res
}

// Pair identifies one ordered site pair to validate.
type Pair struct {
	A, B SiteInfo
}

// ValidateAll validates every pair concurrently across workers private
// buffers, merging results deterministically by (SiteA, SiteB) rather
// than by completion order, per the worker-pool convention set out for
// this package: no channel-based merge, each worker owns a plain slice
// it appends to, and the caller sorts once at the end.
func ValidateAll(ctx context.Context, pairs []Pair, dsm geo.DSM, boundary BoundaryPolygon, opts Options, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	buffers := make([][]Result, workers)
	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			buf := make([]Result, 0, len(pairs)/workers+1)
			for i := worker; i < len(pairs); i += workers {
				select {
				case <-ctx.Done():
					select {
					case errCh <- ctx.Err():
					default:
					}
					return
				default:
				}
				p := pairs[i]
				buf = append(buf, Validate(p.A, p.B, dsm, boundary, opts))
			}
			buffers[worker] = buf
		}(w)
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	total := 0
	for _, buf := range buffers {
		total += len(buf)
	}
	merged := make([]Result, 0, total)
	for _, buf := range buffers {
		merged = append(merged, buf...)
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].SiteA != merged[j].SiteA {
			return merged[i].SiteA < merged[j].SiteA
		}
		return merged[i].SiteB < merged[j].SiteB
	})
	return merged, nil
}
