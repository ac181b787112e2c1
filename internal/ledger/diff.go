package ledger

import "time"

// DefaultStagger separates consecutive uploads.
const DefaultStagger = 3 * time.Second

// UploadTask is a pending upload and its delay from the start of the run.
type UploadTask struct {
	Record SessionRecord
	Delay  time.Duration
}

// Diff returns the candidates whose identifier is absent from existing,
// preserving candidate order. Repeated identifiers among the candidates are
// kept once.
func Diff(existing, candidates []SessionRecord) []SessionRecord {
	seen := make(map[string]struct{}, len(existing)+len(candidates))
	for _, rec := range existing {
		seen[rec.Identifier] = struct{}{}
	}
	var out []SessionRecord
	for _, rec := range candidates {
		if _, ok := seen[rec.Identifier]; ok {
			continue
		}
		seen[rec.Identifier] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// Plan staggers records: the i-th upload (from zero) waits i*stagger.
func Plan(records []SessionRecord, stagger time.Duration) []UploadTask {
	if len(records) == 0 {
		return nil
	}
	if stagger < 0 {
		stagger = 0
	}
	tasks := make([]UploadTask, len(records))
	for i, rec := range records {
		tasks[i] = UploadTask{Record: rec, Delay: time.Duration(i) * stagger}
	}
	return tasks
}
