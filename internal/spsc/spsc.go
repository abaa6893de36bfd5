// Package spsc implements a bounded single-producer/single-consumer queue.
//
// Each slot carries a sequence stamp so that TryEnqueue and TryDequeue are
// wait-free without compare-and-swap loops, and producer and consumer
// positions sit on separate cache lines to avoid false sharing. Exactly one
// goroutine may enqueue and exactly one may dequeue.
package spsc

// slot couples a payload with its sequence stamp.
type slot[T any] struct {
	seq  uint64
	item T
}

// Queue is a fixed-capacity ring dedicated to one producer and one consumer.
type Queue[T any] struct {
	_    [64]byte // keep head on its own cache line
	head uint64   // consumer position
	_    [64]byte
	tail uint64 // producer position
	_    [64]byte
	mask uint64
	buf  []slot[T]
}

// New allocates a queue whose capacity must be a power of two; it panics
// otherwise so the bit-masking arithmetic stays valid.
func New[T any](capacity int) *Queue[T] {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("spsc: capacity must be >0 and a power of two")
	}
	q := &Queue[T]{
		mask: uint64(capacity - 1),
		buf:  make([]slot[T], capacity),
	}
	for i := range q.buf {
		q.buf[i].seq = uint64(i)
	}
	return q
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}

// TryEnqueue appends item, returning false if the queue is full.
func (q *Queue[T]) TryEnqueue(item T) bool {
	t := q.tail
	s := &q.buf[t&q.mask]
	if loadAcquire(&s.seq) != t {
		return false // consumer has not yet reclaimed the slot
	}
	s.item = item
	storeRelease(&s.seq, t+1)
	storeRelease(&q.tail, t+1)
	return true
}

// TryDequeue removes the oldest item, returning false if the queue is empty.
func (q *Queue[T]) TryDequeue() (T, bool) {
	var zero T
	h := q.head
	s := &q.buf[h&q.mask]
	if loadAcquire(&s.seq) != h+1 {
		return zero, false // producer has not yet published to the slot
	}
	item := s.item
	s.item = zero // release references held by the slot
	storeRelease(&s.seq, h+uint64(len(q.buf)))
	storeRelease(&q.head, h+1)
	return item, true
}

// Len reports the approximate number of queued items. It is exact when
// called from either the producer or the consumer goroutine.
func (q *Queue[T]) Len() int {
	t := loadAcquire(&q.tail)
	h := loadAcquire(&q.head)
	if t < h {
		return 0
	}
	return int(t - h)
}
