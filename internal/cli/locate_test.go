package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/langpatch/pkg/langs"
)

func TestLocateCommand(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "packages", "py-zlib", "package.py"), []byte(definition("PyZlib")))

	out, err := execute(t, "locate", path)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if strings.TrimSpace(out) != "10" {
		t.Errorf("locate = %q, want 10", out)
	}
}

func TestLocateCommandExplicitClass(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "package.py"), []byte(definition("Zlib")))

	out, err := execute(t, "locate", path, "Zlib", "--stack")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if lines[0] != "10" {
		t.Errorf("line = %q, want 10", lines[0])
	}
	if len(lines) != 2 || !strings.Contains(lines[1], "expression_statement 10-10") {
		t.Errorf("stack output = %q", out)
	}

	if _, err := execute(t, "locate", path, "Other"); err == nil || !strings.Contains(err.Error(), "DEFINITION_NOT_FOUND") {
		t.Errorf("locate missing class: err = %v", err)
	}
}

func TestLocateCommandAdd(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "packages", "zlib", "package.py"), []byte(definition("Zlib")))

	out, err := execute(t, "locate", path, "--add", "cxx,c")
	if err != nil {
		t.Fatalf("locate --add: %v", err)
	}
	lines := strings.Split(out, "\n")
	want := []string{
		`    version("1.2", sha256="def")`,
		``,
		`    depends_on("c", type="build")  # generated`,
		`    depends_on("cxx", type="build")  # generated`,
		``,
		`    depends_on("pkgconfig", type="build")`,
	}
	if got := lines[9:15]; strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("patched lines =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}

	data, _ := os.ReadFile(path)
	if string(data) != definition("Zlib") {
		t.Error("locate --add without --write modified the file")
	}
}

func TestLocateCommandWrite(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "packages", "zlib", "package.py"), []byte(definition("Zlib")))

	if _, err := execute(t, "locate", path, "-a", "fortran", "--write"); err != nil {
		t.Fatalf("locate --write: %v", err)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), `depends_on("fortran", type="build")  # generated`) {
		t.Fatalf("file not patched:\n%s", data)
	}

	// A second write adds nothing.
	out, err := execute(t, "locate", path, "-a", "fortran", "--write")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "already declares") {
		t.Errorf("second write output = %q", out)
	}
	again, _ := os.ReadFile(path)
	if string(again) != string(data) {
		t.Error("second write changed the file")
	}
}

func TestLocateCommandErrors(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "zlib", "package.py"), []byte(definition("Zlib")))

	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{"locate"}},
		{"missing file", []string{"locate", filepath.Join(t.TempDir(), "nope.py"), "Zlib"}},
		{"unknown language", []string{"locate", path, "--add", "rust"}},
		{"write without add", []string{"locate", path, "--write"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("%v: want error", tt.args)
			}
		})
	}
}

func TestParseLanguages(t *testing.T) {
	set, err := parseLanguages([]string{"fortran", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if set != langs.Of(langs.C, langs.Fortran) {
		t.Errorf("parseLanguages = %v", set)
	}
	if _, err := parseLanguages([]string{"C"}); err == nil {
		t.Error("parseLanguages(C): tags are lowercase, want error")
	}
}
