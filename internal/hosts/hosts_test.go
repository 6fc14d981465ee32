package hosts

import (
	"os"
	"path/filepath"
	"testing"
)

const testDirectory = `
hosts:
  - name: Pieters
    email: pieters@voorbeeld.nl
  - name: De Bakker
    email: bakker@voorbeeld.nl
`

func writeHostsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write hosts file: %v", err)
	}
	return path
}

func TestLoadAndFind(t *testing.T) {
	dir := NewDirectory()
	if err := dir.LoadFile(writeHostsFile(t, testDirectory)); err != nil {
		t.Fatalf("load: %v", err)
	}

	if dir.Len() != 2 {
		t.Fatalf("expected 2 hosts, got %d", dir.Len())
	}

	host, found := dir.Find("pieters")
	if !found {
		t.Fatal("expected case-insensitive lookup to find Pieters")
	}
	if host.Email != "pieters@voorbeeld.nl" {
		t.Errorf("unexpected email %q", host.Email)
	}

	if _, found := dir.Find("  DE BAKKER  "); !found {
		t.Error("expected trimmed lookup to find De Bakker")
	}

	if _, found := dir.Find("onbekend"); found {
		t.Error("expected unknown host to be absent")
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	dir := NewDirectory()
	if err := dir.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Fatalf("expected missing file to be tolerated, got %v", err)
	}
	if dir.Len() != 0 {
		t.Errorf("expected empty directory, got %d hosts", dir.Len())
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := NewDirectory()
	if err := dir.LoadFile(writeHostsFile(t, "hosts: [broken")); err == nil {
		t.Error("expected parse error for invalid YAML")
	}
}
