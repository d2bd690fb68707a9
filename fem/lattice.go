package fem

// MultiIndices enumerates the n-tuples of non-negative integers summing to
// p. The n "pure" tuples p*e_i come first, in vertex order, the rest follow
// in lexicographic order. With n = d+1 these are the barycentric coordinates
// (times p) of the equispaced nodes of the order p simplex.
func MultiIndices(n, p int) (idx [][]int) {
	for i := 0; i < n; i++ {
		a := make([]int, n)
		a[i] = p
		idx = append(idx, a)
	}
	if p == 0 {
		return idx[:1]
	}
	cur := make([]int, n)
	var rec func(pos, remaining int)
	rec = func(pos, remaining int) {
		if pos == n-1 {
			cur[pos] = remaining
			if !isPure(cur, p) {
				a := make([]int, n)
				copy(a, cur)
				idx = append(idx, a)
			}
			return
		}
		for v := remaining; v >= 0; v-- {
			cur[pos] = v
			rec(pos+1, remaining-v)
		}
	}
	rec(0, p)
	return
}

// Exponents enumerates the exponent tuples of the monomials in d variables of
// total degree <= p, constant first
func Exponents(d, p int) (exps [][]int) {
	for deg := 0; deg <= p; deg++ {
		for _, a := range MultiIndices(d, deg) {
			exps = append(exps, a)
		}
	}
	return
}

// NumNodes is the number of order p Lagrange nodes on a d-simplex
func NumNodes(d, p int) int {
	// binomial(p+d, d)
	n := 1
	for i := 1; i <= d; i++ {
		n = n * (p + i) / i
	}
	return n
}

func isPure(a []int, p int) bool {
	for _, v := range a {
		if v == p {
			return true
		}
	}
	return false
}
