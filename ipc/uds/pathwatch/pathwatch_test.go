package pathwatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func tempFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), uuid.New().String())
	if err := os.WriteFile(p, nil, 0600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRemoved(t *testing.T) {
	p := tempFile(t)

	w, err := Removed(p)
	if err != nil {
		t.Fatalf("Removed(): got err == %s, want err == nil", err)
	}
	defer w.Close()

	select {
	case <-w.Done():
		t.Fatalf("Done() closed before the file was removed")
	case <-time.After(50 * time.Millisecond):
	}

	// Other files in the directory are ignored.
	other := filepath.Join(filepath.Dir(p), "other")
	if err := os.WriteFile(other, nil, 0600); err != nil {
		t.Fatal(err)
	}
	os.Remove(other)
	select {
	case <-w.Done():
		t.Fatalf("Done() closed for a different file")
	case <-time.After(50 * time.Millisecond):
	}

	if err := os.Remove(p); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("Done() did not close after the file was removed")
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close(): got err == %s, want err == nil", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close(): got err == %s, want err == nil", err)
	}
}

func TestRenamed(t *testing.T) {
	p := tempFile(t)

	w, err := Removed(p)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.Rename(p, p+".old"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("Done() did not close after the file was renamed")
	}
}

func TestMissing(t *testing.T) {
	if _, err := Removed(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Errorf("Removed(missing file): got err == nil, want err != nil")
	}
}
