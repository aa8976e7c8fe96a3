package lsoda

// coeffs.go builds the Adams-Moulton and BDF coefficient tables (elco,
// tesco) that the predictor, corrector and error test consult every step.
// Grounded on the generating-polynomial recurrence described for cfode:
// Adams builds p(x) = prod_{k=1}^{nq-1}(x+k) and integrates it over
// [-1,0]; BDF builds p(x) = prod_{k=1}^{nq}(x+k) and normalises by its
// linear coefficient. Both tables are small (<=12 and <=5 orders) and are
// computed once per method activation, never per step.

const (
	maxOrderAdams = 12
	maxOrderBDF   = 5
)

// coeffTable holds the per-order coefficient data described in spec.md
// section 3 ("Coefficient tables"). Rows are 1-indexed on order; elco rows
// are 1-indexed on the polynomial coefficient slot, consistent with the
// rest of the context's 1-based arithmetic convention.
type coeffTable struct {
	elco [][]float64 // elco[nq][1..nq+1]
	tesco [][4]float64 // tesco[nq][1..3] (index 0 unused)
	sm1  []float64    // sm1[nq], Adams stability bound, nq=1..12
}

// sm1Adams are the classic Adams stability-region bounds indexed by
// order, used by the step/order selector to intersect candidate growth
// factors with the method's stability region before switching to BDF.
var sm1Adams = []float64{
	0, 0.5, 0.575, 0.55, 0.45, 0.35, 0.25, 0.2, 0.15, 0.1, 0.075, 0.05, 0.025,
}

// buildAdamsCoeffs constructs elco/tesco for meth=1, orders 1..12.
func buildAdamsCoeffs() *coeffTable {
	tab := &coeffTable{
		elco:  make([][]float64, maxOrderAdams+1),
		tesco: make([][4]float64, maxOrderAdams+1),
		sm1:   append([]float64(nil), sm1Adams...),
	}
	pc := make([]float64, maxOrderAdams+2)
	pc[1] = 1 // p(x) = 1 for nq = 1 (empty product)
	rqfac := 1.0
	for nq := 1; nq <= maxOrderAdams; nq++ {
		fnq := float64(nq)
		if nq > 1 {
			fnqm1 := float64(nq - 1)
			// multiply current pc (degree nq-2) by (x + fnqm1):
			// new[i] = old[i-1] + fnqm1*old[i]
			for i := nq; i >= 2; i-- {
				pc[i] = pc[i-1] + fnqm1*pc[i]
			}
			pc[1] = fnqm1 * pc[1]
		}
		// integrate p(x) and x*p(x) over [-1, 0]
		pint := pc[1]
		xpin := pc[1] / 2
		tsign := 1.0
		for i := 2; i <= nq; i++ {
			tsign = -tsign
			pint += tsign * pc[i] / float64(i)
			xpin += tsign * pc[i] / float64(i+1)
		}
		elco := make([]float64, nq+2)
		elco[1] = pint * rqfac
		elco[2] = 1
		for i := 2; i <= nq; i++ {
			elco[i+1] = rqfac * pc[i] / float64(i)
		}
		tab.elco[nq] = elco
		agamq := rqfac * xpin
		tab.tesco[nq][1] = 0 // filled below once order nq-1's "up" constant is known
		tab.tesco[nq][2] = 1 / agamq
		rqfac /= fnq
	}
	// tesco[nq][1] (down-test constant) reuses the order-below's own
	// current-order constant; tesco[nq][3] (up-test constant) reuses the
	// order-above's own current-order constant. Order 13 does not exist, so
	// order 12's up constant clamps to its own current-order constant; order
	// 1 has no order below it and its down constant is set to 1 (the
	// selector consults the down constant only when nq > 1).
	tab.tesco[1][1] = 1
	for nq := 2; nq <= maxOrderAdams; nq++ {
		tab.tesco[nq][1] = tab.tesco[nq-1][2]
	}
	for nq := 1; nq < maxOrderAdams; nq++ {
		tab.tesco[nq][3] = tab.tesco[nq+1][2]
	}
	tab.tesco[maxOrderAdams][3] = tab.tesco[maxOrderAdams][2]
	return tab
}

// buildBDFCoeffs constructs elco/tesco for meth=2, orders 1..5.
func buildBDFCoeffs() *coeffTable {
	tab := &coeffTable{
		elco:  make([][]float64, maxOrderBDF+1),
		tesco: make([][4]float64, maxOrderBDF+1),
	}
	pc := make([]float64, maxOrderBDF+3)
	pc[1] = 1
	rq1fac := 1.0
	for nq := 1; nq <= maxOrderBDF; nq++ {
		fnq := float64(nq)
		// multiply current pc (degree nq-1) by (x + fnq):
		// new[i] = old[i-1] + fnq*old[i]
		for i := nq + 1; i >= 2; i-- {
			pc[i] = pc[i-1] + fnq*pc[i]
		}
		pc[1] = fnq * pc[1]
		elco := make([]float64, nq+2)
		for i := 1; i <= nq+1; i++ {
			elco[i] = pc[i] / pc[2]
		}
		elco[2] = 1
		tab.elco[nq] = elco
		tab.tesco[nq][1] = rq1fac
		tab.tesco[nq][2] = float64(nq+1) / elco[1]
		tab.tesco[nq][3] = float64(nq+2) / elco[1]
		rq1fac /= fnq
	}
	return tab
}
