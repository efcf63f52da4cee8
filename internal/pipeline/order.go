package pipeline

// #region imports
import (
	"fmt"
	"sort"
	"strings"
)

// #endregion

// #region ordering

// orderStages topologically orders the declared stages by their
// requires/produces declarations. Among simultaneously eligible stages the
// declared order is preserved, so ordering is deterministic. Returns a
// DependencyError naming the stuck stages and their missing fields when no
// valid order exists.
func orderStages(specs []StageSpec, initialFields []string) ([]StageSpec, error) {
	available := make(map[string]bool, len(initialFields))
	for _, f := range initialFields {
		available[f] = true
	}

	ordered := make([]StageSpec, 0, len(specs))
	remaining := append([]StageSpec(nil), specs...)

	for len(remaining) > 0 {
		picked := -1
		for i, s := range remaining {
			if satisfied(s.Stage.Requires(), available) {
				picked = i
				break
			}
		}
		if picked == -1 {
			return nil, &DependencyError{Reason: stuckReason(remaining, available)}
		}
		s := remaining[picked]
		ordered = append(ordered, s)
		remaining = append(remaining[:picked], remaining[picked+1:]...)
		for _, f := range s.Stage.Produces() {
			available[f] = true
		}
	}
	return ordered, nil
}

// satisfied reports whether every required field is available.
func satisfied(requires []string, available map[string]bool) bool {
	for _, f := range requires {
		if !available[f] {
			return false
		}
	}
	return true
}

// stuckReason describes why the remaining stages cannot be scheduled.
func stuckReason(remaining []StageSpec, available map[string]bool) string {
	var parts []string
	for _, s := range remaining {
		var missing []string
		for _, f := range s.Stage.Requires() {
			if !available[f] {
				missing = append(missing, f)
			}
		}
		sort.Strings(missing)
		parts = append(parts, fmt.Sprintf("%s needs [%s]", s.Stage.ID(), strings.Join(missing, ", ")))
	}
	return "unsatisfiable stage ordering: " + strings.Join(parts, "; ")
}

// #endregion ordering
