package platform

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	// base/
	//   data/ (stickies.yaml)
	//     notes/
	//       nested/
	//   portable/ (session.db)
	//   empty/

	baseDir := t.TempDir()
	dataDir := filepath.Join(baseDir, "data")
	notesDir := filepath.Join(dataDir, "notes")
	nestedDir := filepath.Join(notesDir, "nested")
	portableDir := filepath.Join(baseDir, "portable")
	emptyDir := filepath.Join(baseDir, "empty")

	for _, dir := range []string{nestedDir, portableDir, emptyDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dataDir, ConfigFileName), []byte("debounce: 1s\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(portableDir, SessionFileName), nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		startPath string
		wantRoot  string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: dataDir, wantRoot: dataDir},
		{name: "Start in Notes", startPath: notesDir, wantRoot: dataDir},
		{name: "Start Nested Deeply", startPath: nestedDir, wantRoot: dataDir},
		{name: "Session Database Marker", startPath: portableDir, wantRoot: portableDir},
		{name: "No Root Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.startPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("FindRoot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != "" && filepath.Clean(got) != filepath.Clean(tt.wantRoot) {
				t.Errorf("FindRoot() = %v, want %v", got, tt.wantRoot)
			}
		})
	}
}
