package spatialmath

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// Hplus4 returns the left Hamilton operator of h, such that vec4(h*q) = Hplus4(h)·vec4(q).
func Hplus4(h quat.Number) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		h.Real, -h.Imag, -h.Jmag, -h.Kmag,
		h.Imag, h.Real, -h.Kmag, h.Jmag,
		h.Jmag, h.Kmag, h.Real, -h.Imag,
		h.Kmag, -h.Jmag, h.Imag, h.Real,
	})
}

// Hminus4 returns the right Hamilton operator of h, such that vec4(q*h) = Hminus4(h)·vec4(q).
func Hminus4(h quat.Number) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		h.Real, -h.Imag, -h.Jmag, -h.Kmag,
		h.Imag, h.Real, h.Kmag, -h.Jmag,
		h.Jmag, -h.Kmag, h.Real, h.Imag,
		h.Kmag, h.Jmag, -h.Imag, h.Real,
	})
}

// Hplus8 returns the left Hamilton operator of x, such that vec8(x*y) = Hplus8(x)·vec8(y).
func Hplus8(x dualquat.Number) *mat.Dense {
	return hamilton8(Hplus4(x.Real), Hplus4(x.Dual))
}

// Hminus8 returns the right Hamilton operator of x, such that vec8(y*x) = Hminus8(x)·vec8(y).
func Hminus8(x dualquat.Number) *mat.Dense {
	return hamilton8(Hminus4(x.Real), Hminus4(x.Dual))
}

// [[H(P) 0] [H(D) H(P)]]
func hamilton8(primary, dual *mat.Dense) *mat.Dense {
	h := mat.NewDense(8, 8, nil)
	h.Slice(0, 4, 0, 4).(*mat.Dense).Copy(primary)
	h.Slice(4, 8, 0, 4).(*mat.Dense).Copy(dual)
	h.Slice(4, 8, 4, 8).(*mat.Dense).Copy(primary)
	return h
}

// C4 returns the matrix mapping vec4(q) to vec4 of the conjugate of q.
func C4() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, -1, 0, 0,
		0, 0, -1, 0,
		0, 0, 0, -1,
	})
}

// C8 returns the matrix mapping vec8(x) to vec8(Conj(x)).
func C8() *mat.Dense {
	c := mat.NewDense(8, 8, nil)
	c.Slice(0, 4, 0, 4).(*mat.Dense).Copy(C4())
	c.Slice(4, 8, 4, 8).(*mat.Dense).Copy(C4())
	return c
}

// CrossMatrix4 returns the matrix such that vec4(a × b) = CrossMatrix4(a)·vec4(b) for pure quaternions.
func CrossMatrix4(a quat.Number) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		0, 0, 0, 0,
		0, 0, -a.Kmag, a.Jmag,
		0, a.Kmag, 0, -a.Imag,
		0, -a.Jmag, a.Imag, 0,
	})
}
