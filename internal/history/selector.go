package history

import "buildprof/internal/diag"

// Selector picks which prior record a run is diffed against. The zero
// value selects the latest record before the current run. Selection
// policy is an explicit value so it can be tested in isolation; there is
// no implicit global default.
type Selector struct {
	// RunID names an explicit prior run.
	RunID string
	// Tag selects the newest record carrying this baseline tag.
	Tag string
}

// LatestPrior is the default selection policy.
func LatestPrior() Selector {
	return Selector{}
}

// ByRunID selects one specific prior run.
func ByRunID(runID string) Selector {
	return Selector{RunID: runID}
}

// LatestTagged selects the newest record with the given baseline tag.
func LatestTagged(tag string) Selector {
	return Selector{Tag: tag}
}

// LoadPrior resolves sel against the store's records, never selecting the
// current run itself. The second return is false when no prior record
// matches; unreadable records are reported to bag and treated as absent.
func (s *Store) LoadPrior(sel Selector, currentRunID string, bag *diag.Bag) (*Record, bool) {
	records, err := s.List(bag)
	if err != nil {
		bag.Addf(diag.SevWarning, diag.CodeHistoryRecordCorrupt, s.dir, "", "%v", err)
		return nil, false
	}

	// Newest first, current run excluded.
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if rec.RunID == currentRunID {
			continue
		}
		switch {
		case sel.RunID != "":
			if rec.RunID == sel.RunID {
				return &rec, true
			}
		case sel.Tag != "":
			if rec.Tag == sel.Tag {
				return &rec, true
			}
		default:
			return &rec, true
		}
	}
	return nil, false
}
