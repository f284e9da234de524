package quadtree

import (
	"math"
	"sort"
	"sync"
)

// spreadBits interleaves the low 16 bits of v with zero bits, so that
// mortonCode(nx, ny) can OR the two spread halves together with ny
// shifted left by one.
func spreadBits(v uint32) uint32 {
	v &= 0x0000ffff
	v = (v | (v << 8)) & 0x00FF00FF
	v = (v | (v << 4)) & 0x0F0F0F0F
	v = (v | (v << 2)) & 0x33333333
	v = (v | (v << 1)) & 0x55555555
	return v
}

// mortonCode computes the 32-bit Z-order interleave of two 16-bit axes.
func mortonCode(nx, ny uint16) uint32 {
	return spreadBits(uint32(nx)) | (spreadBits(uint32(ny)) << 1)
}

// normalizeAxis scales v into the 16-bit range [0, 65535] given the
// axis's min and extent, clamping out-of-range values to the edges.
func normalizeAxis(v, min, extent float32) uint16 {
	if extent <= 0 || math.IsNaN(float64(extent)) || math.IsInf(float64(extent), 0) {
		return 0
	}
	t := (v - min) / extent
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return uint16(t * 65535)
}

// extrema is the bounding box of a batch's Morton points, tracked as
// four independent reductions (min/max per axis, computed separately —
// unlike the source, which conflates the maxY update with maxX).
type extrema struct {
	minX, minY, maxX, maxY float32
}

func boundingExtrema[T any](handles []*itemHandle[T], policy ShapePolicy[T], threadLevel int) extrema {
	if threadLevel <= 0 || len(handles) < 2*threadLevel {
		return sequentialExtrema(handles, policy)
	}
	return parallelExtrema(handles, policy, threadLevel)
}

func sequentialExtrema[T any](handles []*itemHandle[T], policy ShapePolicy[T]) extrema {
	p0 := policy.MortonPoint(handles[0].data)
	e := extrema{minX: p0.X, minY: p0.Y, maxX: p0.X, maxY: p0.Y}
	for _, h := range handles[1:] {
		p := policy.MortonPoint(h.data)
		if p.X < e.minX {
			e.minX = p.X
		}
		if p.X > e.maxX {
			e.maxX = p.X
		}
		if p.Y < e.minY {
			e.minY = p.Y
		}
		if p.Y > e.maxY {
			e.maxY = p.Y
		}
	}
	return e
}

// parallelExtrema partitions handles into threadLevel chunks, computes
// per-chunk extrema concurrently, and reduces the results under a lock.
func parallelExtrema[T any](handles []*itemHandle[T], policy ShapePolicy[T], threadLevel int) extrema {
	n := len(handles)
	chunks := threadLevel
	if chunks > n {
		chunks = n
	}
	chunkSize := (n + chunks - 1) / chunks

	var mu sync.Mutex
	var wg sync.WaitGroup
	first := true
	var result extrema

	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		slice := handles[start:end]
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := sequentialExtrema(slice, policy)
			mu.Lock()
			defer mu.Unlock()
			if first {
				result = local
				first = false
				return
			}
			if local.minX < result.minX {
				result.minX = local.minX
			}
			if local.maxX > result.maxX {
				result.maxX = local.maxX
			}
			if local.minY < result.minY {
				result.minY = local.minY
			}
			if local.maxY > result.maxY {
				result.maxY = local.maxY
			}
		}()
	}
	wg.Wait()
	return result
}

type mortonKeyed[T any] struct {
	handle *itemHandle[T]
	key    uint32
}

// sortHandlesByMorton stably sorts handles in place by ascending Morton
// code, normalizing each axis against ext.
func sortHandlesByMorton[T any](handles []*itemHandle[T], policy ShapePolicy[T], ext extrema) {
	width := ext.maxX - ext.minX
	height := ext.maxY - ext.minY
	keyed := make([]mortonKeyed[T], len(handles))
	for i, h := range handles {
		p := policy.MortonPoint(h.data)
		nx := normalizeAxis(p.X, ext.minX, width)
		ny := normalizeAxis(p.Y, ext.minY, height)
		keyed[i] = mortonKeyed[T]{handle: h, key: mortonCode(nx, ny)}
	}
	sort.SliceStable(keyed, func(i, j int) bool { return keyed[i].key < keyed[j].key })
	for i, k := range keyed {
		handles[i] = k.handle
	}
}
