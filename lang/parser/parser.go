// Package parser implements the recursive-descent parser (spec component I)
// that turns a token stream into an *ast.Chunk.
package parser

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/lorelei-lang/lorelei/lang/ast"
	"github.com/lorelei-lang/lorelei/lang/scanner"
	"github.com/lorelei-lang/lorelei/lang/token"
)

// Mode configures parsing. The zero value parses a chunk in non-strict mode
// and reports every syntax error found.
type Mode uint

const (
	// StopOnFirstError makes the parser return after the first syntax error
	// instead of attempting to resynchronize and keep reporting more.
	StopOnFirstError Mode = 1 << iota
)

// ParseFiles parses each named source file into its own *ast.Chunk. The
// returned error, if non-nil, is a token.ErrorList.
func ParseFiles(ctx context.Context, mode Mode, files ...string) (*token.FileSet, []*ast.Chunk, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	fs := token.NewFileSet()
	chunks := make([]*ast.Chunk, 0, len(files))
	var errs token.ErrorList

	for _, file := range files {
		select {
		case <-ctx.Done():
			return fs, chunks, ctx.Err()
		default:
		}

		b, err := os.ReadFile(file)
		if err != nil {
			errs.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		ch, fileErrs := ParseChunk(fs, file, b, mode)
		errs = append(errs, fileErrs...)
		chunks = append(chunks, ch)
	}
	errs.Sort()
	return fs, chunks, errs.Err()
}

// ParseChunk parses a single chunk of source, registering it under filename
// in fset for position reporting.
func ParseChunk(fset *token.FileSet, filename string, src []byte, mode Mode) (*ast.Chunk, token.ErrorList) {
	var p parser
	p.mode = mode
	p.init(fset, filename, src)
	ch := p.parseChunk()
	return ch, p.errors
}

// parser holds the transient state of one parse of one chunk.
type parser struct {
	mode    Mode
	scanner scanner.Scanner
	errors  token.ErrorList
	file    *token.File

	tok token.Token
	val token.Value

	// loopDepth and switchDepth validate break/continue placement without
	// waiting for the resolver; labels in scope (for labeled break/continue)
	// are tracked in labels.
	loopDepth, switchDepth int
	labels                 []string

	// noIn suppresses treating the `in` keyword as a binary operator while
	// parsing the init clause of a classic for(;;) loop, so that
	// `for (x in y)` can be recognized as a for-in loop instead.
	noIn bool

	// strict is set once a `"use strict"` pragma is seen for the current
	// chunk or function body; nested function bodies inherit it, and it is
	// restored on exit (parseFuncSignatureAndBody).
	strict bool
}

func (p *parser) init(fset *token.FileSet, filename string, src []byte) {
	p.file = fset.AddFile(filename, len(src))
	p.scanner.Init(p.file, src, p.errors.Add)
	p.advance()
}

// regexNotAllowedAfter lists tokens after which a following '/' must be
// read as division rather than the start of a regex literal.
var regexNotAllowedAfter = map[token.Token]bool{
	token.IDENT: true, token.INT: true, token.FLOAT: true,
	token.STRING: true, token.REGEXP: true,
	token.RPAREN: true, token.RBRACK: true, token.RBRACE: true,
	token.THIS: true, token.TRUE: true, token.FALSE: true, token.NULL: true,
	token.INC: true, token.DEC: true,
}

func (p *parser) advance() {
	p.scanner.InRegexContext = !regexNotAllowedAfter[p.tok]
	p.tok = p.scanner.Scan(&p.val)
}

var errPanicMode = errors.New("parser: panic mode")

// expect consumes the current token if it matches tok, recording and
// panicking with errPanicMode otherwise; the panic is recovered at the
// statement level and yields a *ast.BadStmt.
func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.val.Pos
	if p.tok != tok {
		p.errorExpected(pos, tok.GoString())
		panic(errPanicMode)
	}
	p.advance()
	return pos
}

func (p *parser) at(toks ...token.Token) bool {
	for _, t := range toks {
		if p.tok == t {
			return true
		}
	}
	return false
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.Add(p.file.Position(pos), msg)
}

func (p *parser) errorExpected(pos token.Pos, what string) {
	msg := "expected " + what
	if pos == p.val.Pos {
		msg += ", found " + p.tok.GoString()
	}
	p.error(pos, msg)
}

// consumeSemi implements automatic semicolon insertion: an explicit ';' is
// consumed, and otherwise a virtual one is accepted before '}', at EOF, or
// when the current token began on a new source line.
func (p *parser) consumeSemi() {
	if p.tok == token.SEMI {
		p.advance()
		return
	}
	if p.tok == token.RBRACE || p.tok == token.EOF || p.val.LineBreakBefore {
		return
	}
	p.errorExpected(p.val.Pos, strings.TrimSpace(token.SEMI.GoString()))
	panic(errPanicMode)
}

// syncAfterError skips tokens up to the next safe resynchronization point (a
// ';', '}' or EOF) and returns a *ast.BadStmt spanning from start to there.
// Callers recover() directly in their own deferred function (recover only
// takes effect when called directly by the deferred function) and call this
// to build the replacement statement.
func (p *parser) syncAfterError(start token.Pos) *ast.BadStmt {
	for !p.at(token.SEMI, token.RBRACE, token.EOF) {
		p.advance()
	}
	if p.tok == token.SEMI {
		p.advance()
	}
	return &ast.BadStmt{Start: start, End: p.val.Pos}
}
