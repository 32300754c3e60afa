package predict

type match struct {
	Index int
	Score float64
}

// worse orders matches for ranking: lower score first, and on equal score the
// later category index counts as worse so ties keep category order.
func worse(a, b match) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Index > b.Index
}

// minHeap keeps the worst retained match at the root.
type minHeap []match

func (h *minHeap) Push(m match) {
	*h = append(*h, m)
	h.up(len(*h) - 1)
}

func (h *minHeap) Replace(m match) {
	(*h)[0] = m
	h.down(0, len(*h))
}

func (h *minHeap) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !worse((*h)[j], (*h)[i]) {
			break
		}
		(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
		j = i
	}
}

func (h *minHeap) down(i0, n int) {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && worse((*h)[j2], (*h)[j1]) {
			j = j2
		}
		if !worse((*h)[j], (*h)[i]) {
			break
		}
		(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
		i = j
	}
}
