package model

// DirectoryEntry is one active job's interest in a monitored address. The
// directory maps address -> entries; several jobs may watch the same address.
type DirectoryEntry struct {
	JobID    string      `json:"jobId"`
	Category JobCategory `json:"category"`
}

// Directory is the address lookup rebuilt from active jobs.
type Directory map[string][]DirectoryEntry

// Addresses returns the distinct monitored addresses in map order. The
// subscription client sorts before sending.
func (d Directory) Addresses() []string {
	out := make([]string, 0, len(d))
	for addr := range d {
		out = append(out, addr)
	}
	return out
}
