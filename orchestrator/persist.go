package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
)

func mkRunDir(outputsRoot string) (string, error) {
	dir := filepath.Join(outputsRoot, "runs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Persist writes the run summary to <outputsRoot>/runs/run_<time>_<id>.json
// and returns its path.
func Persist(outputsRoot string, s *Summary) (string, error) {
	dir, err := mkRunDir(outputsRoot)
	if err != nil {
		return "", err
	}
	id := s.RunID
	if len(id) > 8 {
		id = id[:8]
	}
	path := filepath.Join(dir, "run_"+s.StartedAt.Format("20060102-150405")+"_"+id+".json")
	if err := writeJSON(path, s); err != nil {
		return "", err
	}
	return path, nil
}
