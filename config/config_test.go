package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"readsim/align"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Ploidy != 2 || c.Coverage != 10 || !c.Paired || c.MaxMotif != 6 || c.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", c)
	}

	if c.Scores() != align.DefaultScores {
		t.Fatalf("unexpected scores %+v", c.Scores())
	}

	if c.Simple.ReadLen != 150 || c.Simple.Substitution != 0.01 {
		t.Fatalf("unexpected simple model %+v", c.Simple)
	}
}

func TestLoad(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "readsim.yaml")
	data := "seed: 42\nploidy: 3\ncoverage: 2.5\nscore:\n  gap: -2\nsimple:\n  read_len: 100\n"
	if err := os.WriteFile(fname, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(fname, map[string]string{"ploidy": "4", "paired": "false"})
	if err != nil {
		t.Fatal(err)
	}

	// flags win over the file
	if c.Seed != 42 || c.Ploidy != 4 || c.Coverage != 2.5 || c.Paired {
		t.Fatalf("unexpected configuration %+v", c)
	}

	if c.Score.Gap != -2 || c.Score.Match != 1 || c.Simple.ReadLen != 100 || c.Simple.Quality != 30 {
		t.Fatalf("unexpected nested values %+v %+v", c.Score, c.Simple)
	}
}

func TestInvalid(t *testing.T) {
	for _, o := range []map[string]string{
		{"ploidy": "0"},
		{"coverage": "0"},
		{"min_mapq": "300"},
		{"log_level": "loud"},
		{"simple.substitution": "2"},
	} {
		if _, err := Load("", o); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%v: expected ErrInvalid, got %v", o, err)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestFromFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int("ploidy", 2, "")
	fs.Float64("coverage", 10, "")
	fs.String("out", "reads", "")
	if err := fs.Parse([]string{"-ploidy", "1", "-out", "x"}); err != nil {
		t.Fatal(err)
	}

	c, err := FromFlags("", fs)
	if err != nil {
		t.Fatal(err)
	}

	// coverage wasn't set, out isn't a configuration entry
	if c.Ploidy != 1 || c.Coverage != 10 {
		t.Fatalf("unexpected configuration %+v", c)
	}
}
