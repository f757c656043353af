package main

import (
	"flag"
	"math/rand"
	"os"
	"time"
	"readsim/config"
	"readsim/errmdl/simple"
	"readsim/io/fasta"
	"readsim/io/fastq"
	"readsim/model"
	"readsim/simulator"

	"github.com/cheggaaa/pb/v3"
	log "github.com/sirupsen/logrus"
)

var cfgName = flag.String("config", "", "configuration file")
var mdlName = flag.String("model", "", "model file, if not set the simple error model is used")
var outName = flag.String("out", "reads", "output prefix")
var progress = flag.Bool("progress", true, "show progress")

var _ = flag.Int64("seed", 0, "random seed (0 picks one)")
var _ = flag.Float64("coverage", 10, "coverage")
var _ = flag.Bool("paired", true, "paired end reads")
var _ = flag.Int("insert_size", simulator.DefaultInsertSize, "insert size if the model has none")
var _ = flag.String("log_level", "info", "log level")

type output struct {
	f	*os.File
	w	*fastq.Writer
}

func create(fname string) (*output, error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, err
	}

	return &output{f, fastq.NewWriter(f)}, nil
}

func (o *output) Close() error {
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return err
	}

	return o.f.Close()
}

func main() {
	flag.Parse()

	cfg, err := config.FromFlags(*cfgName, flag.CommandLine)
	if err != nil {
		log.Fatal(err)
	}
	cfg.SetupLog()

	if flag.NArg() == 0 {
		log.Fatal("expecting at least one FASTA file")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.WithField("seed", seed).Info("random seed")
	rnd := rand.New(rand.NewSource(seed))

	var outs []*output
	for _, suffix := range []string{"_1.fq", "_2.fq"} {
		if len(outs) == 1 && !cfg.Paired {
			break
		}

		o, err := create(*outName + suffix)
		if err != nil {
			log.Fatal(err)
		}
		outs = append(outs, o)
	}

	var w2 *fastq.Writer
	if len(outs) > 1 {
		w2 = outs[1].w
	}

	sim := simulator.New(rnd, outs[0].w, w2)
	sim.Coverage = cfg.Coverage
	sim.InsertSize = cfg.InsertSize
	if *mdlName != "" {
		mdl, err := model.Load(*mdlName)
		if err != nil {
			log.Fatalf("%s: %v", *mdlName, err)
		}

		sim.SetModel(mdl)
	} else {
		s := cfg.Simple
		sim.SetGenerator(simple.New(s.Insertion, s.Deletion, s.Substitution, s.ReadLen, byte(s.Quality)))
	}

	for _, fname := range flag.Args() {
		err := fasta.Parse(fname, func(label, desc string, seq []byte) error {
			var bar *pb.ProgressBar
			var inc func()
			if *progress {
				bar = pb.Full.Start(0)
				bar.Set("prefix", label + " ")
				inc = func() { bar.Increment() }
				defer bar.Finish()
			}

			return sim.Simulate(label, seq, inc)
		})

		if err != nil {
			log.Fatalf("%s: %v", fname, err)
		}
	}

	for _, o := range outs {
		if err := o.Close(); err != nil {
			log.Fatal(err)
		}
	}

	log.Info(sim.Stats)
}
