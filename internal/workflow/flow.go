package workflow

import "resto-pos/internal/models"

// flowTables defines the valid status transitions per flow template.
// The key is the current status, the value the statuses reachable from it.
// A status missing from its flow's table is terminal. Cancellation is NOT
// baked into these rows; NextStatuses layers it on as a universal override.
var flowTables = map[string]map[string][]string{
	models.FlowPendingPreparingServedCompleted: {
		models.StatusPending:   {models.StatusPreparing},
		models.StatusPreparing: {models.StatusServed},
		models.StatusServed:    {models.StatusCompleted},
	},
	models.FlowPendingReadyServedCompleted: {
		models.StatusPending: {models.StatusReady},
		models.StatusReady:   {models.StatusServed},
		models.StatusServed:  {models.StatusCompleted},
	},
	models.FlowPendingCompleted: {
		models.StatusPending: {models.StatusCompleted},
	},
	models.FlowCustom: {
		models.StatusPending:   {models.StatusPreparing, models.StatusReady, models.StatusServed, models.StatusCompleted},
		models.StatusPreparing: {models.StatusReady, models.StatusServed, models.StatusCompleted},
		models.StatusReady:     {models.StatusServed, models.StatusCompleted},
		models.StatusServed:    {models.StatusCompleted},
	},
}

// Terminal reports whether a status accepts no further transitions in any flow.
func Terminal(status string) bool {
	return status == models.StatusCompleted || status == models.StatusCancelled
}

// AllowedNext returns the forward transitions the flow template declares for
// the given status. Unknown flows fall back to the custom (open) table.
// Cancellation is not included here; see NextStatuses.
func AllowedNext(flow, status string) []string {
	table, ok := flowTables[flow]
	if !ok {
		table = flowTables[models.FlowCustom]
	}
	next := table[status]
	out := make([]string, len(next))
	copy(out, next)
	return out
}

// NextStatuses is AllowedNext plus the emergency cancellation override:
// every non-terminal status may always move to cancelled.
func NextStatuses(flow, status string) []string {
	next := AllowedNext(flow, status)
	if !Terminal(status) {
		next = append(next, models.StatusCancelled)
	}
	return next
}

// CanTransition checks a single edge, override included.
func CanTransition(flow, from, to string) bool {
	for _, s := range NextStatuses(flow, from) {
		if s == to {
			return true
		}
	}
	return false
}

// CanReach reports whether `to` is reachable from `from` by walking the
// flow's forward edges (cancellation excluded). Used by the all-prepared
// auto-serve rule, where "the flow allows serving" means served lies
// somewhere ahead of the order's current status.
func CanReach(flow, from, to string) bool {
	if from == to {
		return true
	}
	seen := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range AllowedNext(flow, cur) {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
