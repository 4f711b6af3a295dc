package compiler_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/loxvm/internal/filetest"
	"github.com/mna/loxvm/lang/compiler"
	"github.com/mna/loxvm/lang/machine"
	"github.com/stretchr/testify/require"
)

var testUpdateDisasmTests = flag.Bool("test.update-disasm-tests", false, "If set, replace expected disassembler test results with actual results.")

// TestDisassembleGolden compiles every .lox file under testdata/in and
// compares compiler.Disassemble's output against the matching golden file
// in testdata/out, the same source-directory/golden-directory convention
// lang/parser/parser_test.go uses in the teacher.
func TestDisassembleGolden(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".lox") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			require.NoError(t, err)

			vm := machine.New()
			fn, err := compiler.Compile(vm, fi.Name(), string(src))
			require.NoError(t, err)

			var buf bytes.Buffer
			compiler.Disassemble(&buf, fn)
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateDisasmTests)
		})
	}
}
