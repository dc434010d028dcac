package reconcile

import "fmt"

// BlockRange represents an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// Len returns the number of blocks in the range.
func (r BlockRange) Len() uint64 {
	if r.To < r.From {
		return 0
	}
	return r.To - r.From + 1
}

// NextChunk returns the range following last, bounded by head and size.
// ok is false when nothing is left to process.
func NextChunk(last, head, size uint64) (BlockRange, bool) {
	if size == 0 {
		size = 1
	}
	if last >= head {
		return BlockRange{}, false
	}
	to := head
	if head-last > size {
		to = last + size
	}
	return BlockRange{From: last + 1, To: to}, true
}

// ChunkIterator walks a closed block range in chunks of at most size blocks.
// Call Advance after a chunk has been handled.
type ChunkIterator struct {
	last uint64
	end  uint64
	size uint64
}

// NewChunkIterator iterates (last, end].
func NewChunkIterator(last, end, size uint64) (*ChunkIterator, error) {
	if size == 0 {
		return nil, fmt.Errorf("chunk size must be greater than zero")
	}
	return &ChunkIterator{last: last, end: end, size: size}, nil
}

// Next returns the next chunk without consuming it.
func (it *ChunkIterator) Next() (BlockRange, bool) {
	return NextChunk(it.last, it.end, it.size)
}

// Advance marks everything up to and including block as handled.
func (it *ChunkIterator) Advance(block uint64) {
	if block > it.last {
		it.last = block
	}
}

// SplitRange splits a block range into batches of size batchSize.
func SplitRange(from, to, batchSize uint64) ([]BlockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	ranges := make([]BlockRange, 0)
	start := from
	for start <= to {
		remaining := to - start + 1
		var end uint64
		if remaining <= batchSize {
			end = to
		} else {
			end = start + batchSize - 1
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}

	return ranges, nil
}

// shrink halves r, keeping at least one block.
func shrink(r BlockRange) BlockRange {
	half := r.Len() / 2
	if half == 0 {
		half = 1
	}
	return BlockRange{From: r.From, To: r.From + half - 1}
}
