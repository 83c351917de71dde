package indexer

import "fmt"

// span is an inclusive block interval, sized to one eth_getLogs call.
type span struct {
	from uint64
	to   uint64
}

// splitSpans cuts [from, to] into spans of at most step blocks.
func splitSpans(from, to, step uint64) ([]span, error) {
	if step == 0 {
		return nil, fmt.Errorf("span step must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("invalid block range %d..%d", from, to)
	}

	spans := make([]span, 0, (to-from)/step+1)
	for lo := from; ; lo += step {
		hi := lo + step - 1
		if hi >= to || hi < lo {
			hi = to
		}
		spans = append(spans, span{from: lo, to: hi})
		if hi == to {
			return spans, nil
		}
	}
}
