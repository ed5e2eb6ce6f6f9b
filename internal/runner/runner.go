// Package runner is the code-execution collaborator: it compiles and runs a
// single buffer in a scratch directory with a hard timeout. The coordinator
// never calls it while holding room state; it is reached over HTTP only.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avolkov/peerpad/internal/domain"
)

var ErrTimeout = errors.New("execution timed out")

// Result carries the program's stdout; failures come back as *RunError.
type Result struct {
	Stdout string `json:"output"`
}

// RunError wraps compiler or runtime output so the caller can show it.
type RunError struct {
	Stage   string
	Details string
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Details)
}

type profile struct {
	filename string
	compile  func(dir, src string) []string
	run      func(dir, src string) []string
}

var javaClassRe = regexp.MustCompile(`public\s+class\s+\w+`)

func profileFor(lang domain.Language) (profile, bool) {
	switch lang {
	case domain.LangJavaScript:
		return profile{
			filename: "main.js",
			run:      func(dir, src string) []string { return []string{"node", src} },
		}, true
	case domain.LangPython:
		return profile{
			filename: "main.py",
			run:      func(dir, src string) []string { return []string{"python3", src} },
		}, true
	case domain.LangCPP:
		return profile{
			filename: "main.cpp",
			compile:  func(dir, src string) []string { return []string{"g++", src, "-o", filepath.Join(dir, "main")} },
			run:      func(dir, src string) []string { return []string{filepath.Join(dir, "main")} },
		}, true
	case domain.LangC:
		return profile{
			filename: "main.c",
			compile:  func(dir, src string) []string { return []string{"gcc", src, "-o", filepath.Join(dir, "main")} },
			run:      func(dir, src string) []string { return []string{filepath.Join(dir, "main")} },
		}, true
	case domain.LangJava:
		return profile{
			filename: "Main.java",
			compile:  func(dir, src string) []string { return []string{"javac", src} },
			run:      func(dir, src string) []string { return []string{"java", "-cp", dir, "Main"} },
		}, true
	}
	return profile{}, false
}

// normalizeSource rewrites the public class name for Java so the file and
// class agree; other languages pass through.
func normalizeSource(lang domain.Language, code string) string {
	if lang == domain.LangJava {
		return javaClassRe.ReplaceAllString(code, "public class Main")
	}
	return code
}

type Runner struct {
	TempDir string
	Timeout time.Duration
}

func New(tempDir string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Runner{TempDir: tempDir, Timeout: timeout}
}

// Run executes code in the given language, feeding stdin to the process.
// All artifacts live in a per-run scratch directory that is removed
// regardless of outcome.
func (r *Runner) Run(ctx context.Context, code string, lang domain.Language, stdin string) (*Result, error) {
	prof, ok := profileFor(lang)
	if !ok {
		return nil, domain.ErrUnsupportedLanguage
	}

	dir, err := os.MkdirTemp(r.TempDir, "run-")
	if err != nil {
		return nil, fmt.Errorf("scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warn().Err(err).Str("module", "runner").Str("dir", dir).Msg("scratch cleanup")
		}
	}()

	src := filepath.Join(dir, prof.filename)
	if err := os.WriteFile(src, []byte(normalizeSource(lang, code)), 0o600); err != nil {
		return nil, fmt.Errorf("write source: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	if prof.compile != nil {
		if _, stderr, err := r.exec(ctx, dir, prof.compile(dir, src), ""); err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, &RunError{Stage: "compile", Details: stderr}
		}
	}

	stdout, stderr, err := r.exec(ctx, dir, prof.run(dir, src), stdin)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, &RunError{Stage: "run", Details: stderr}
	}
	return &Result{Stdout: stdout}, nil
}

func (r *Runner) exec(ctx context.Context, dir string, argv []string, stdin string) (string, string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
