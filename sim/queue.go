// Implements the WaitQueue, which holds the continuations of requests waiting
// for a server slot. Continuations are enqueued when Acquire finds the pool full.

package sim

// WaitQueue is a FIFO of suspended acquisitions. The head is always the
// longest-waiting request.
type WaitQueue struct {
	queue []Task
}

// Enqueue adds a continuation to the back of the wait queue.
func (wq *WaitQueue) Enqueue(t Task) {
	wq.queue = append(wq.queue, t)
}

// Len returns the number of waiting continuations.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

// DequeueFront removes and returns the head of the queue, or nil if empty.
func (wq *WaitQueue) DequeueFront() Task {
	if len(wq.queue) == 0 {
		return nil
	}
	head := wq.queue[0]
	wq.queue[0] = nil
	wq.queue = wq.queue[1:]
	return head
}
