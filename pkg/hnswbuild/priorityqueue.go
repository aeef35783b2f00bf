package hnswbuild

import "container/heap"

type pqItem struct {
	id       int32
	priority float32
}

// heapItems implements heap.Interface as a max-heap ordered by priority
// (highest similarity first).
type heapItems []pqItem

func (h heapItems) Len() int            { return len(h) }
func (h heapItems) Less(i, j int) bool  { return h[i].priority > h[j].priority }
func (h heapItems) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *heapItems) Push(x interface{}) { *h = append(*h, x.(pqItem)) }
func (h *heapItems) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// priorityQueue is a container/heap-backed max-heap over pqItem. It
// backs both the candidate frontier and the result set during a layer
// search.
type priorityQueue struct {
	items heapItems
}

func (pq *priorityQueue) Len() int { return pq.items.Len() }

func (pq *priorityQueue) Push(item pqItem) {
	heap.Push(&pq.items, item)
}

func (pq *priorityQueue) Pop() pqItem {
	if pq.items.Len() == 0 {
		return pqItem{}
	}
	return heap.Pop(&pq.items).(pqItem)
}

func (pq *priorityQueue) Peek() pqItem {
	if pq.items.Len() == 0 {
		return pqItem{}
	}
	return pq.items[0]
}

// PopWorst removes and returns the lowest-priority item, used to evict
// the weakest result once the result set exceeds ef. container/heap
// only exposes O(1) access to the max, so finding the min is a linear
// scan; ef is small (tens of entries) so this stays cheap.
func (pq *priorityQueue) PopWorst() pqItem {
	if pq.items.Len() == 0 {
		return pqItem{}
	}
	minIdx := 0
	for i := 1; i < len(pq.items); i++ {
		if pq.items[i].priority < pq.items[minIdx].priority {
			minIdx = i
		}
	}
	return heap.Remove(&pq.items, minIdx).(pqItem)
}
