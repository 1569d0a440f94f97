package lazy

import (
	"encoding/json"
	"os"
	"time"
)

type accessRecord struct {
	LastAccessUnix int64 `json:"last_access_unix"`
	AccessCount    int   `json:"access_count"`
}

type seedRecord struct {
	lastAccess time.Time
	count      int
}

// loadHistory seeds access metadata from HistoryPath. Best-effort: any error
// leaves the seed empty.
func (l *Layer) loadHistory() {
	l.seed = make(map[string]seedRecord)
	if l.cfg.HistoryPath == "" {
		return
	}
	f, err := os.Open(l.cfg.HistoryPath)
	if err != nil {
		return
	}
	defer f.Close()
	var data map[string]accessRecord
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return
	}
	for id, rec := range data {
		l.seed[id] = seedRecord{lastAccess: time.Unix(rec.LastAccessUnix, 0), count: rec.AccessCount}
	}
}

// saveHistory persists per-id access metadata. Best-effort: errors ignored.
func (l *Layer) saveHistory() {
	if l.cfg.HistoryPath == "" {
		return
	}
	l.mu.Lock()
	snap := make(map[string]accessRecord, len(l.instances))
	for id, inst := range l.instances {
		if inst.accessCount == 0 {
			continue
		}
		snap[id] = accessRecord{LastAccessUnix: inst.lastAccess.Unix(), AccessCount: inst.accessCount}
	}
	l.mu.Unlock()
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(l.cfg.HistoryPath, b, 0o644)
}
