package prices

import "time"

// Window is an inclusive [Start, End] range of whole seconds.
type Window struct {
	Start time.Time
	End   time.Time
}

// split cuts [start, end] into consecutive windows holding at most width/1s samples each.
func split(start, end time.Time, width time.Duration) []Window {
	start = start.UTC().Truncate(time.Second)
	end = end.UTC().Truncate(time.Second)
	if end.Before(start) || width < time.Second {
		return nil
	}

	step := width.Truncate(time.Second)
	windows := make([]Window, 0, int(end.Sub(start)/step)+1)
	for s := start; !s.After(end); s = s.Add(step) {
		e := s.Add(step - time.Second)
		if e.After(end) {
			e = end
		}
		windows = append(windows, Window{Start: s, End: e})
	}
	return windows
}
