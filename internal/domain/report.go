package domain

// BatchReport holds one TransformResult per input, in input order.
type BatchReport struct {
	Results []TransformResult
}

// BatchSummary aggregates a report. Byte totals cover successful items only,
// so BytesSaved compares like with like.
type BatchSummary struct {
	Total     int
	Succeeded int
	Failed    int
	BytesIn   int64
	BytesOut  int64
}

func (r BatchReport) Summary() BatchSummary {
	s := BatchSummary{Total: len(r.Results)}
	for _, res := range r.Results {
		if !res.Success {
			s.Failed++
			continue
		}
		s.Succeeded++
		if res.Stats != nil {
			s.BytesIn += int64(res.Stats.OriginalByteSize)
			s.BytesOut += int64(res.Stats.OutputByteSize)
		}
	}
	return s
}

func (s BatchSummary) BytesSaved() int64 {
	return s.BytesIn - s.BytesOut
}
