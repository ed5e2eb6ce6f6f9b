package runner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/avolkov/peerpad/internal/domain"
)

func TestProfileForCoversAllLanguages(t *testing.T) {
	langs := []domain.Language{
		domain.LangJavaScript,
		domain.LangPython,
		domain.LangCPP,
		domain.LangJava,
		domain.LangC,
	}
	for _, l := range langs {
		prof, ok := profileFor(l)
		if !ok {
			t.Fatalf("no profile for %s", l)
		}
		if prof.run == nil {
			t.Fatalf("%s has no run command", l)
		}
		if argv := prof.run("/tmp/x", "/tmp/x/"+prof.filename); len(argv) == 0 {
			t.Fatalf("%s run argv empty", l)
		}
	}
	if _, ok := profileFor("cobol"); ok {
		t.Fatal("unknown language must have no profile")
	}
}

func TestCompiledLanguagesHaveCompileStep(t *testing.T) {
	for _, l := range []domain.Language{domain.LangCPP, domain.LangJava, domain.LangC} {
		prof, _ := profileFor(l)
		if prof.compile == nil {
			t.Fatalf("%s should compile before running", l)
		}
	}
	for _, l := range []domain.Language{domain.LangJavaScript, domain.LangPython} {
		prof, _ := profileFor(l)
		if prof.compile != nil {
			t.Fatalf("%s should not have a compile step", l)
		}
	}
}

func TestNormalizeSourceRenamesJavaClass(t *testing.T) {
	src := "public class Scratch {\n  public static void main(String[] a) {}\n}"
	got := normalizeSource(domain.LangJava, src)
	if !strings.Contains(got, "public class Main") {
		t.Fatalf("class not renamed: %q", got)
	}
	if normalizeSource(domain.LangPython, "x = 1") != "x = 1" {
		t.Fatal("non-java source must pass through")
	}
}

func TestRunRejectsUnsupportedLanguage(t *testing.T) {
	r := New(t.TempDir(), time.Second)
	if _, err := r.Run(context.Background(), "x", "cobol", ""); err != domain.ErrUnsupportedLanguage {
		t.Fatalf("err = %v", err)
	}
}

func TestNewDefaultsTimeout(t *testing.T) {
	if r := New("", 0); r.Timeout != 5*time.Second {
		t.Fatalf("timeout = %s", r.Timeout)
	}
}
