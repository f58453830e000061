// Package filter implements the fixed-size moving average used to steady
// the particulate sensor's raw ADC samples.
package filter

import "github.com/gammazero/deque"

// Size is the number of samples averaged by a Window.
const Size = 10

// Window is a rolling window of the last Size samples plus their running
// sum. The zero value is ready to use; the first sample primes every slot.
//
// A Window is not safe for concurrent use.
type Window struct {
	samples deque.Deque[int]
	sum     int
	primed  bool
}

// Filter pushes sample into the window and returns the truncated average of
// the current contents. The first call returns sample unchanged.
func (w *Window) Filter(sample int) int {
	if !w.primed {
		w.primed = true
		w.samples.Clear()
		w.sum = 0
		for i := 0; i < Size; i++ {
			w.samples.PushBack(sample)
			w.sum += sample
		}
		return sample
	}

	w.sum -= w.samples.PopFront()
	w.samples.PushBack(sample)
	w.sum += sample

	return w.sum / Size
}

// Sum returns the running sum of the window.
func (w *Window) Sum() int { return w.sum }

// Len returns the number of samples held, 0 before the first call.
func (w *Window) Len() int { return w.samples.Len() }

// Samples returns a copy of the window, oldest first.
func (w *Window) Samples() []int {
	out := make([]int, w.samples.Len())
	for i := range out {
		out[i] = w.samples.At(i)
	}
	return out
}
