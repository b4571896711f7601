package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// PersistBundle is the analysis.json document written for a session.
type PersistBundle struct {
	SessionID   string    `json:"session_id"`
	AudioPath   string    `json:"audio_path"`
	GeneratedAt time.Time `json:"generated_at"`
	Method      string    `json:"analysis_method"`
	Result      Result    `json:"result"`
}

func mkSessionDir(outputsRoot string) (string, string, error) {
	ts := time.Now().Format("20060102-150405")
	sid := "session_" + ts
	dir := filepath.Join(outputsRoot, sid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	return sid, dir, nil
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Persist stores r under a new session directory below outputsRoot and
// returns the session id and the path of the written file.
func Persist(outputsRoot, audioPath string, r Result) (sessionID, path string, err error) {
	sid, outDir, err := mkSessionDir(outputsRoot)
	if err != nil {
		return "", "", err
	}
	path = filepath.Join(outDir, "analysis.json")
	bundle := PersistBundle{
		SessionID:   sid,
		AudioPath:   audioPath,
		GeneratedAt: time.Now(),
		Method:      r.Method(),
		Result:      r,
	}
	if err := WriteJSON(path, bundle); err != nil {
		return "", "", err
	}
	return sid, path, nil
}
