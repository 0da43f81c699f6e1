// Package similarity computes pairwise cosine similarity over the row
// vectors of a count matrix.
//
// The full matrix build is O(M²·V) and runs once per corpus; rows are
// split into blocks and fanned out across NumCPU workers. Each worker
// owns a disjoint set of (i, j) cells, so the output needs no locking.
package similarity

import (
	"math"
	"runtime"
	"sync"
)

// Cosine returns the cosine similarity of two vectors:
// dot(a, b) / (|a|·|b|). Defined as 0 when either vector is the zero
// vector, never NaN, so degenerate empty-metadata rows stay comparable.
func Cosine(a, b []float64) float64 {
	na := Norm(a)
	nb := Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}

// Norm returns the Euclidean magnitude of a vector.
func Norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// Matrix computes the full square similarity matrix for the given row
// vectors. Only the upper triangle is computed; the lower triangle is
// mirrored, so similarity(i, j) == similarity(j, i) exactly. The
// diagonal is 1 for non-zero rows and 0 for zero rows.
func Matrix(vectors [][]float64) [][]float64 {
	n := len(vectors)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
	}
	if n == 0 {
		return out
	}

	// Precompute norms once; the inner loop then only needs dot products.
	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = Norm(v)
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	const block = 64

	type span struct{ lo, hi int }
	jobs := make(chan span, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				for i := job.lo; i < job.hi; i++ {
					if norms[i] == 0 {
						continue // zero row: whole row stays 0, diagonal included
					}
					out[i][i] = 1
					for j := i + 1; j < n; j++ {
						if norms[j] == 0 {
							continue
						}
						s := dot(vectors[i], vectors[j]) / (norms[i] * norms[j])
						out[i][j] = s
						out[j][i] = s
					}
				}
			}
		}()
	}

	for lo := 0; lo < n; lo += block {
		hi := lo + block
		if hi > n {
			hi = n
		}
		jobs <- span{lo, hi}
	}
	close(jobs)
	wg.Wait()

	return out
}
