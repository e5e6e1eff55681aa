package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func mkSessionDir(outputsRoot string, now time.Time) (string, string, error) {
	ts := now.Format("20060102-150405")
	sid := "session_" + ts
	dir := filepath.Join(outputsRoot, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	return sid, dir, nil
}

// writeJSON leaves no file behind when v cannot be encoded.
func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Persist writes the report to <outputsRoot>/session_<ts>/report_<id>.json
// and returns the file path.
func Persist(outputsRoot string, r *Report) (string, error) {
	_, dir, err := mkSessionDir(outputsRoot, r.GeneratedAt)
	if err != nil {
		return "", fmt.Errorf("session dir: %w", err)
	}
	path := filepath.Join(dir, "report_"+r.ID+".json")
	if err := writeJSON(path, r); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
