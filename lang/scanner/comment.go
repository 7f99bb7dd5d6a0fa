package scanner

import (
	"context"
	"os"

	"github.com/lorelei-lang/lorelei/lang/token"
)

// PrintError writes a scanner/parser/resolver ErrorList (or any error) to
// w, one diagnostic per line.
var PrintError = token.PrintError

// TokenAndValue combines the token type with the token value type, as
// produced by successive calls to Scanner.Scan.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFiles tokenizes the named source files and returns the resulting
// FileSet plus the list of tokens for each file, in file order. The error,
// if non-nil, is an ErrorList.
func ScanFiles(ctx context.Context, files ...string) (*token.FileSet, [][]TokenAndValue, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var (
		s      Scanner
		tokVal token.Value
		el     token.ErrorList
	)

	fs := token.NewFileSet()
	tokensByFile := make([][]TokenAndValue, len(files))
	for i, file := range files {
		select {
		case <-ctx.Done():
			return fs, tokensByFile, ctx.Err()
		default:
		}

		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		f := fs.AddFile(file, len(b))
		s.Init(f, b, el.Add)
		for {
			tok := s.Scan(&tokVal)
			tokensByFile[i] = append(tokensByFile[i], TokenAndValue{Token: tok, Value: tokVal})
			if tok == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return fs, tokensByFile, el.Err()
}
