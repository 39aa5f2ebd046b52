package playback

// resampler converts a sample stream between rates with linear
// interpolation, keeping unconsumed input across pushes so chunk boundaries
// stay seamless.
type resampler struct {
	buf  []int16
	pos  float64
	step float64
}

func newResampler(srcRate, dstRate int) *resampler {
	return &resampler{step: float64(srcRate) / float64(dstRate)}
}

func (r *resampler) push(in []int16) []int16 {
	r.buf = append(r.buf, in...)
	if len(r.buf) < 2 {
		return nil
	}

	var out []int16
	for {
		i := int(r.pos)
		if i+1 >= len(r.buf) {
			break
		}

		frac := r.pos - float64(i)
		s0 := float64(r.buf[i])
		s1 := float64(r.buf[i+1])
		v := s0 + (s1-s0)*frac
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}

		out = append(out, int16(v))
		r.pos += r.step
	}

	drop := int(r.pos)
	if drop > 0 {
		if drop >= len(r.buf) {
			r.buf = r.buf[:0]
			r.pos = 0
		} else {
			r.buf = r.buf[drop:]
			r.pos -= float64(drop)
		}
	}

	return out
}
