package wide

// F32x4 represents 4 float32 values for SIMD-style operations.
type F32x4 [4]float32

// SplatF32 creates F32x4 with all elements set to n.
func SplatF32(n float32) F32x4 {
	return F32x4{n, n, n, n}
}

// Add performs element-wise addition.
func (v F32x4) Add(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = v[i] + other[i]
	}
	return result
}

// Sub performs element-wise subtraction.
func (v F32x4) Sub(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = v[i] - other[i]
	}
	return result
}

// Mul performs element-wise multiplication.
func (v F32x4) Mul(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = v[i] * other[i]
	}
	return result
}

// MulAdd returns v*m + a element-wise.
func (v F32x4) MulAdd(m, a F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = v[i]*m[i] + a[i]
	}
	return result
}

// Min performs element-wise minimum.
func (v F32x4) Min(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = min(v[i], other[i])
	}
	return result
}

// Max performs element-wise maximum.
func (v F32x4) Max(other F32x4) F32x4 {
	var result F32x4
	for i := range v {
		result[i] = max(v[i], other[i])
	}
	return result
}

// Sum returns the horizontal sum of the lanes.
func (v F32x4) Sum() float32 {
	return v[0] + v[1] + v[2] + v[3]
}
