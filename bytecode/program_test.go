package bytecode

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const helloYAML = `
dialect: abc
functions:
  - name: hello
    nargs: 0
    code: [pushglobal, null, pushstring, console, getproperty, null,
           pushstring, log, getproperty, null, pushstring, Hello, call, 1]
  - name: store
    nargs: 1
    code:
      - pushdouble
      - 2.5
      - setlocal
      - 1
`

func TestParseYAML(t *testing.T) {
	p, err := ParseYAML([]byte(helloYAML))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}

	if p.Dialect != "abc" || len(p.Functions) != 2 {
		t.Fatalf("program = %+v", p)
	}

	hello, ok := p.Lookup("hello")
	if !ok {
		t.Fatal("hello not found")
	}
	if len(hello.Code) != 7 {
		t.Fatalf("hello has %d instructions, want 7", len(hello.Code))
	}
	if hello.Code[1] != I("pushstring", "console") {
		t.Errorf("code[1] = %v", hello.Code[1])
	}
	if hello.Code[6] != I("call", 1) {
		t.Errorf("code[6] = %v", hello.Code[6])
	}

	store, _ := p.Lookup("store")
	if store.NArgs != 1 || store.Code[0].Operand != Float(2.5) {
		t.Errorf("store = %+v", store)
	}

	if _, ok := p.Lookup("missing"); ok {
		t.Error("Lookup(missing) should fail")
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"odd code", "functions:\n  - name: f\n    code: [pushnull]\n"},
		{"bool operand", "functions:\n  - name: f\n    code: [pushstring, true]\n"},
		{"negative nargs", "functions:\n  - name: f\n    nargs: -1\n    code: []\n"},
		{"duplicate", "functions:\n  - name: f\n  - name: f\n"},
		{"bad dialect", "dialect: avm3\nfunctions: []\n"},
		{"not yaml", "functions: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseYAML([]byte(tt.src)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	p := sampleProgram()

	data, err := p.EncodeYAML()
	if err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}

	got, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML: %v\n%s", err, data)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("round trip mismatch:\n%s\n got %#v\nwant %#v", data, got, p)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "hello.yaml")
	if err := os.WriteFile(yamlPath, []byte(helloYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadFile(yamlPath)
	if err != nil {
		t.Fatalf("LoadFile yaml: %v", err)
	}

	data, err := MarshalProgram(p)
	if err != nil {
		t.Fatal(err)
	}
	cborPath := filepath.Join(dir, "hello.abcb")
	if err := os.WriteFile(cborPath, data, 0o644); err != nil {
		t.Fatal(err)
	}
	q, err := LoadFile(cborPath)
	if err != nil {
		t.Fatalf("LoadFile cbor: %v", err)
	}
	if !reflect.DeepEqual(p, q) {
		t.Error("yaml and cbor loads differ")
	}

	if _, err := LoadFile(filepath.Join(dir, "hello.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	txt := filepath.Join(dir, "prog.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(txt); err == nil {
		t.Error("expected error for unknown extension")
	}
}
