package store

import (
	"hash/fnv"
	"math"

	"github.com/OFFIS-RIT/idisland/internal/util"
)

// NameVectorDims is the dimension of name vectors.
const NameVectorDims = 64

func ChunkRange(total, chunkSize int, fn func(start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = total
	}
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		if err := fn(start, end); err != nil {
			return err
		}
	}
	return nil
}

// NameVector embeds a person name as an L2-normalized bag of hashed
// character trigrams over the folded name padded with spaces. Names with
// many shared trigrams have a small cosine distance. An empty name yields
// the zero vector.
func NameVector(name string) []float32 {
	vec := make([]float32, NameVectorDims)
	folded := util.FoldName(name)
	if folded == "" {
		return vec
	}

	r := []rune(" " + folded + " ")
	h := fnv.New32a()
	for i := 0; i+3 <= len(r); i++ {
		h.Reset()
		_, _ = h.Write([]byte(string(r[i : i+3])))
		vec[h.Sum32()%NameVectorDims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 if
// either is the zero vector.
func CosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range min(len(a), len(b)) {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
