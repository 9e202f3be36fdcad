package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/src-d/enry/v2"

	"github.com/Sumatoshi-tech/layerfang/pkg/layers"
	"github.com/Sumatoshi-tech/layerfang/pkg/pyimports"
	"github.com/Sumatoshi-tech/layerfang/pkg/rules"
)

// languagePython is the enry language name the parser registry supports.
const languagePython = "Python"

const defaultWorkers = 4

// Options configures a Scanner. Policy and Layers must already be validated
// against each other.
type Options struct {
	Root         string
	PackageName  string
	Layers       []string
	Policy       rules.Policy
	IncludeTests bool
	Workers      int
	Logger       *slog.Logger
}

// Scanner performs one pass over a source tree. It is immutable after
// construction and safe for concurrent use.
type Scanner struct {
	root         string
	packageName  string
	declared     layers.Names
	policy       rules.Policy
	includeTests bool
	workers      int
	parser       *pyimports.Parser
	reader       fileReader
	log          *slog.Logger
}

// fileReader abstracts file content access for tests.
type fileReader func(path string) ([]byte, error)

// New creates a Scanner from validated options.
func New(opts Options) *Scanner {
	workers := opts.Workers
	if workers < 1 {
		workers = defaultWorkers
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scanner{
		root:         opts.Root,
		packageName:  opts.PackageName,
		declared:     layers.NewNames(opts.Layers),
		policy:       opts.Policy,
		includeTests: opts.IncludeTests,
		workers:      workers,
		parser:       pyimports.NewParser(),
		reader:       readFile,
		log:          logger,
	}
}

// Run discovers candidate files and analyzes each one on a bounded worker
// pool. Per-file failures degrade to violations; only discovery itself can
// fail. Violations are returned in (file, line, col) order regardless of
// worker scheduling.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	paths, err := Walk(s.root, s.includeTests)
	if err != nil {
		return nil, err
	}

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		violations []Violation
		scanned    int
	)

	jobs := make(chan string, s.workers)

	wg.Add(s.workers)

	for range s.workers {
		go func() {
			defer wg.Done()

			for path := range jobs {
				fileViolations, analyzed := s.analyzeFile(ctx, path)

				mu.Lock()

				if analyzed {
					scanned++
				}

				violations = append(violations, fileViolations...)

				mu.Unlock()
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}

	close(jobs)
	wg.Wait()

	sortViolations(violations)

	return &Result{
		Violations:   violations,
		FilesScanned: scanned,
		Elapsed:      time.Since(started),
	}, nil
}

// analyzeFile classifies one file and evaluates its imports. The second
// return value reports whether the file was actually analyzed (reserved-layer
// files and non-Python content are skipped without analysis).
//
// Unreadable or non-UTF-8 content degrades to a single synthetic violation,
// the same shape as a parse failure: a CI guardrail must finish the scan and
// surface the broken file as a finding rather than abort.
func (s *Scanner) analyzeFile(ctx context.Context, path string) ([]Violation, bool) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		s.log.Warn("skipping file outside root", "path", path, "error", err)

		return nil, false
	}

	fileLayer := layers.FileLayer(filepath.ToSlash(rel), s.declared)
	if layers.IsReserved(fileLayer) {
		return nil, false
	}

	data, err := s.reader(path)
	if err != nil {
		return []Violation{s.analysisFailure(path, fileLayer, 1, 0, fmt.Sprintf("read failure: %v", err))}, true
	}

	if !utf8.Valid(data) {
		return []Violation{s.analysisFailure(path, fileLayer, 1, 0, "read failure: content is not valid UTF-8")}, true
	}

	if lang := enry.GetLanguage(filepath.Base(path), data); lang != languagePython {
		s.log.Debug("skipping non-Python candidate", "path", path, "language", lang)

		return nil, false
	}

	refs, err := s.parser.Imports(ctx, data)
	if err != nil {
		var parseErr *pyimports.ParseError
		if errors.As(err, &parseErr) {
			reason := fmt.Sprintf("SyntaxError: %s", parseErr.Msg)

			return []Violation{s.analysisFailure(path, fileLayer, parseErr.Line, parseErr.Col, reason)}, true
		}

		return []Violation{s.analysisFailure(path, fileLayer, 1, 0, fmt.Sprintf("parse failure: %v", err))}, true
	}

	var violations []Violation

	for _, ref := range refs {
		moduleLayer := layers.ImportLayer(ref.Module, s.packageName, s.declared)

		if !s.policy.Evaluate(fileLayer, moduleLayer) {
			continue
		}

		violations = append(violations, Violation{
			File:        path,
			FileLayer:   fileLayer,
			Module:      ref.Module,
			ModuleLayer: moduleLayer,
			Line:        ref.Line,
			Col:         ref.Col,
			Reason:      rules.Reason,
		})
	}

	return violations, true
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path) //nolint:wrapcheck // callers wrap into the violation reason.
}

// analysisFailure builds the synthetic violation standing in for a file that
// could not be analyzed.
func (s *Scanner) analysisFailure(path, fileLayer string, line, col uint32, reason string) Violation {
	return Violation{
		File:        path,
		FileLayer:   fileLayer,
		Module:      ParseErrorModule,
		ModuleLayer: layers.Other,
		Line:        line,
		Col:         col,
		Reason:      reason,
	}
}
