package marketdata

// seriesBuffer keeps a rolling window of one indicator buffer, one sample per
// bar. Samples are stored oldest-first and handed out newest-first, the way a
// terminal exposes buffers "as series".
type seriesBuffer struct {
	max int
	buf []float64
}

func newSeriesBuffer(max int) *seriesBuffer {
	if max <= 0 {
		max = 16
	}
	return &seriesBuffer{max: max}
}

// Push appends the sample of a newly opened bar.
func (s *seriesBuffer) Push(v float64) {
	s.buf = append(s.buf, v)
	if len(s.buf) > s.max {
		s.buf = s.buf[len(s.buf)-s.max:]
	}
}

// SetLatest overwrites the sample of the forming bar.
func (s *seriesBuffer) SetLatest(v float64) {
	if len(s.buf) == 0 {
		s.Push(v)
		return
	}
	s.buf[len(s.buf)-1] = v
}

func (s *seriesBuffer) Len() int {
	return len(s.buf)
}

// Latest returns up to n samples, newest first: index 0 is the forming bar,
// index 1 the previous one and so on.
func (s *seriesBuffer) Latest(n int) []float64 {
	if n > len(s.buf) {
		n = len(s.buf)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = s.buf[len(s.buf)-1-i]
	}
	return out
}
