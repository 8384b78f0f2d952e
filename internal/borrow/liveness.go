package borrow

// ComputeLiveness runs the standard backward liveness fixpoint over a CFG:
// live-in[n] = uses[n] ∪ (live-out[n] − defs[n]), live-out[n] = ∪ live-in[succ]
// (original_source/.../borrowcheck.py `_compute_liveness`).
func ComputeLiveness(nodes []*Node) (liveIn, liveOut map[int]map[string]bool) {
	liveIn = make(map[int]map[string]bool, len(nodes))
	liveOut = make(map[int]map[string]bool, len(nodes))
	for _, n := range nodes {
		liveIn[n.ID] = map[string]bool{}
		liveOut[n.ID] = map[string]bool{}
	}
	changed := true
	for changed {
		changed = false
		for i := len(nodes) - 1; i >= 0; i-- {
			n := nodes[i]
			outSet := map[string]bool{}
			for _, succ := range n.Succs {
				mergeInto(outSet, liveIn[succ])
			}
			inSet := map[string]bool{}
			mergeInto(inSet, n.Uses)
			for name := range outSet {
				if !n.Defs[name] {
					inSet[name] = true
				}
			}
			if !setEqual(outSet, liveOut[n.ID]) || !setEqual(inSet, liveIn[n.ID]) {
				liveOut[n.ID] = outSet
				liveIn[n.ID] = inSet
				changed = true
			}
		}
	}
	return liveIn, liveOut
}

func setEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
