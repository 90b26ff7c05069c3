package dataprocessing

import "drillsheet/pkg/contracts/domain"

// DefaultPageSize is the number of points stored per series page.
const DefaultPageSize = 400

// ChunkPoints splits points into consecutive pages of at most size points,
// preserving order. A non-positive size uses DefaultPageSize.
func ChunkPoints(points []domain.DischargePoint, size int) [][]domain.DischargePoint {
	if size <= 0 {
		size = DefaultPageSize
	}
	if len(points) == 0 {
		return nil
	}
	pages := make([][]domain.DischargePoint, 0, (len(points)+size-1)/size)
	for start := 0; start < len(points); start += size {
		end := min(start+size, len(points))
		pages = append(pages, points[start:end:end])
	}
	return pages
}
