package dashboard

import "math"

// ComputeStats counts active agents, one completed task per 10% of phase
// progress, and the rounded mean phase progress.
func ComputeStats(agents []*Agent, phases []*Phase) Stats {
	var s Stats
	for _, a := range agents {
		if a.Status == StatusActive {
			s.ActiveAgents++
		}
	}
	if len(phases) == 0 {
		return s
	}
	total := 0
	for _, p := range phases {
		s.CompletedTasks += p.Progress / 10
		total += p.Progress
	}
	s.Progress = int(math.Round(float64(total) / float64(len(phases))))
	return s
}
