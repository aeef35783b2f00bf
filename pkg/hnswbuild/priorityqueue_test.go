package hnswbuild

import "testing"

func TestPriorityQueuePopReturnsHighestPriorityFirst(t *testing.T) {
	pq := &priorityQueue{}
	pq.Push(pqItem{id: 1, priority: 0.3})
	pq.Push(pqItem{id: 2, priority: 0.9})
	pq.Push(pqItem{id: 3, priority: 0.5})

	first := pq.Pop()
	if first.id != 2 || first.priority != 0.9 {
		t.Fatalf("expected id=2 priority=0.9, got %+v", first)
	}
	second := pq.Pop()
	if second.id != 3 {
		t.Fatalf("expected id=3 next, got %+v", second)
	}
}

func TestPriorityQueuePopWorstRemovesLowestPriority(t *testing.T) {
	pq := &priorityQueue{}
	pq.Push(pqItem{id: 1, priority: 0.3})
	pq.Push(pqItem{id: 2, priority: 0.9})
	pq.Push(pqItem{id: 3, priority: 0.1})

	worst := pq.PopWorst()
	if worst.id != 3 {
		t.Fatalf("expected worst id=3, got %+v", worst)
	}
	if pq.Len() != 2 {
		t.Fatalf("expected 2 remaining, got %d", pq.Len())
	}
}

func TestPriorityQueueEmptyOperationsAreSafe(t *testing.T) {
	pq := &priorityQueue{}
	if pq.Pop() != (pqItem{}) {
		t.Fatalf("expected zero value from Pop on empty queue")
	}
	if pq.Peek() != (pqItem{}) {
		t.Fatalf("expected zero value from Peek on empty queue")
	}
	if pq.PopWorst() != (pqItem{}) {
		t.Fatalf("expected zero value from PopWorst on empty queue")
	}
}
