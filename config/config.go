// Package config holds the parameters shared by the commands. The values
// can come from a configuration file (any format viper reads) and from the
// command line flags, which take precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"readsim/align"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var ErrInvalid = errors.New("invalid configuration")

type Scores struct {
	Match		int	`mapstructure:"match"`
	Mismatch	int	`mapstructure:"mismatch"`
	Gap		int	`mapstructure:"gap"`
}

// Parameters of the error model used when no profile is available
type Simple struct {
	Insertion	float64	`mapstructure:"insertion"`
	Deletion	float64	`mapstructure:"deletion"`
	Substitution	float64	`mapstructure:"substitution"`
	ReadLen		int	`mapstructure:"read_len"`
	Quality		int	`mapstructure:"quality"`
}

type Config struct {
	Seed		int64	`mapstructure:"seed"`	// 0 picks a random seed
	LogLevel	string	`mapstructure:"log_level"`

	// genome
	Ploidy		int	`mapstructure:"ploidy"`

	// model
	MaxInsertSize	int	`mapstructure:"max_insert_size"`
	MaxRepetition	int	`mapstructure:"max_repetition"`
	MaxMotif	int	`mapstructure:"max_motif"`
	SizeGranularity	int	`mapstructure:"size_granularity"`

	// profiling
	MinMapQ		int	`mapstructure:"min_mapq"`
	Score		Scores	`mapstructure:"score"`

	// simulation
	Coverage	float64	`mapstructure:"coverage"`
	Paired		bool	`mapstructure:"paired"`
	InsertSize	int	`mapstructure:"insert_size"`
	Simple		Simple	`mapstructure:"simple"`
}

var defaults = map[string]interface{}{
	"seed":			0,
	"log_level":		"info",
	"ploidy":		2,
	"max_insert_size":	1000,
	"max_repetition":	16,
	"max_motif":		6,
	"size_granularity":	100,
	"min_mapq":		20,
	"score.match":		align.DefaultScores.Match,
	"score.mismatch":	align.DefaultScores.Mismatch,
	"score.gap":		align.DefaultScores.Gap,
	"coverage":		10.0,
	"paired":		true,
	"insert_size":		500,
	"simple.insertion":	0.001,
	"simple.deletion":	0.001,
	"simple.substitution":	0.01,
	"simple.read_len":	150,
	"simple.quality":	30,
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	return v
}

// Returns the default configuration
func Default() *Config {
	c, err := load(newViper())
	if err != nil {
		panic(err)
	}

	return c
}

// Loads the configuration file (if fname is not empty) and applies the
// overrides, keyed like the file entries (e.g. "score.gap").
func Load(fname string, overrides map[string]string) (*Config, error) {
	v := newViper()
	if fname != "" {
		v.SetConfigFile(fname)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%s: %w", fname, err)
		}
	}

	for k, val := range overrides {
		v.Set(k, val)
	}

	return load(v)
}

// Loads the configuration file and overrides it with the flags explicitly
// set on the command line. Flags are matched to the entries by name.
func FromFlags(fname string, fs *flag.FlagSet) (*Config, error) {
	o := make(map[string]string)
	fs.Visit(func(f *flag.Flag) {
		if _, ok := defaults[f.Name]; ok {
			o[f.Name] = f.Value.String()
		}
	})

	return Load(fname, o)
}

func load(v *viper.Viper) (c *Config, err error) {
	c = new(Config)
	if err = v.Unmarshal(c); err != nil {
		return nil, err
	}

	if err = c.Validate(); err != nil {
		return nil, err
	}

	return
}

func (c *Config) Validate() error {
	switch {
	case c.Ploidy < 1:
		return fmt.Errorf("%w: ploidy %d", ErrInvalid, c.Ploidy)

	case c.Coverage <= 0:
		return fmt.Errorf("%w: coverage %v", ErrInvalid, c.Coverage)

	case c.MinMapQ < 0 || c.MinMapQ > 255:
		return fmt.Errorf("%w: minimum mapping quality %d", ErrInvalid, c.MinMapQ)

	case c.InsertSize < 1:
		return fmt.Errorf("%w: insert size %d", ErrInvalid, c.InsertSize)

	case c.Simple.ReadLen < 1 || c.Simple.Quality < 0 || c.Simple.Quality > 93:
		return fmt.Errorf("%w: simple model read length %d quality %d", ErrInvalid, c.Simple.ReadLen, c.Simple.Quality)

	case c.Simple.Insertion < 0 || c.Simple.Deletion < 0 || c.Simple.Substitution < 0 ||
		c.Simple.Insertion + c.Simple.Deletion + c.Simple.Substitution > 1:
		return fmt.Errorf("%w: simple model error rates", ErrInvalid)
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return nil
}

func (c *Config) Scores() align.Scores {
	return align.Scores{Match: c.Score.Match, Mismatch: c.Score.Mismatch, Gap: c.Score.Gap}
}

// Sets the level of the standard logger
func (c *Config) SetupLog() {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		lvl = log.InfoLevel
	}

	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
