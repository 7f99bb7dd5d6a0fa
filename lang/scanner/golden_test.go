package scanner

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lorelei-lang/lorelei/internal/filetest"
	"github.com/lorelei-lang/lorelei/lang/token"
)

var testUpdateScannerTests = flag.Bool("test.update-scanner-tests", false,
	"If set, replaces the scanner golden files with the current output.")

// TestScanGoldenFiles tokenizes every fixture under testdata and diffs the
// token dump against its checked-in .want file, the same golden-file scheme
// the tokenize CLI command's output format follows.
func TestScanGoldenFiles(t *testing.T) {
	files := filetest.SourceFiles(t, "testdata", ".js")
	for _, fi := range files {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			b, err := os.ReadFile(filepath.Join("testdata", fi.Name()))
			require.NoError(t, err)

			var s Scanner
			f := token.NewFile(fi.Name(), len(b))
			var errs token.ErrorList
			s.Init(f, b, errs.Add)

			var buf strings.Builder
			var val token.Value
			for {
				tok := s.Scan(&val)
				buf.WriteString(tok.String())
				if val.Raw != "" {
					buf.WriteString(" ")
					buf.WriteString(val.Raw)
				}
				buf.WriteByte('\n')
				if tok == token.EOF {
					break
				}
			}
			require.Empty(t, errs)

			filetest.DiffOutput(t, fi, buf.String(), "testdata", testUpdateScannerTests)
		})
	}
}
