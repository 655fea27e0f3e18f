package ingest

// GenerateBatches partitions pages [1..totalPages] into contiguous batches of
// batchSize. A positive limit caps the number of pages covered. Pure and
// deterministic; batches are enumerated in page order.
func GenerateBatches(totalPages, batchSize, limit int) [][]int {
	if limit <= 0 || limit > totalPages {
		limit = totalPages
	}

	var batches [][]int
	for start := 1; start <= limit; start += batchSize {
		end := start + batchSize - 1
		if end > limit {
			end = limit
		}
		batch := make([]int, 0, end-start+1)
		for page := start; page <= end; page++ {
			batch = append(batch, page)
		}
		batches = append(batches, batch)
	}
	return batches
}
