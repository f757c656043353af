package main

import (
	"flag"
	"io"
	"os"
	"strings"
	"readsim/config"
	"readsim/io/fasta"
	"readsim/model"
	"readsim/profiler"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/cheggaaa/pb/v3"
	log "github.com/sirupsen/logrus"
)

var cfgName = flag.String("config", "", "configuration file")
var refName = flag.String("ref", "", "reference FASTA file")
var mdlName = flag.String("model", "model.txt", "output model file")
var progress = flag.Bool("progress", true, "show progress")

var _ = flag.Int("max_insert_size", 1000, "maximum insert size")
var _ = flag.Int("max_repetition", 16, "maximum number of repetitions of a tandem repeat")
var _ = flag.Int("max_motif", 6, "maximum motif size of a tandem repeat")
var _ = flag.Int("size_granularity", 100, "number of insert size buckets")
var _ = flag.Int("min_mapq", profiler.DefaultMinMapQ, "minimum mapping quality")
var _ = flag.String("log_level", "info", "log level")

func loadReferences(fname string) (map[string][]byte, error) {
	refs := make(map[string][]byte)
	err := fasta.Parse(fname, func(label, desc string, seq []byte) error {
		refs[label] = seq
		return nil
	})

	return refs, err
}

func open(fname string, rd io.Reader) (profiler.Reader, error) {
	if strings.HasSuffix(fname, ".sam") {
		return sam.NewReader(rd)
	}

	return bam.NewReader(rd, 0)
}

func profile(p *profiler.Profiler, fname string) error {
	f, err := os.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	var bar *pb.ProgressBar
	if *progress {
		st, err := f.Stat()
		if err != nil {
			return err
		}

		bar = pb.Full.Start64(st.Size())
		bar.Set(pb.Bytes, true)
		r = bar.NewProxyReader(f)
		defer bar.Finish()
	}

	rd, err := open(fname, r)
	if err != nil {
		return err
	}

	if c, ok := rd.(io.Closer); ok {
		defer c.Close()
	}

	return p.Run(rd, nil)
}

func main() {
	flag.Parse()

	cfg, err := config.FromFlags(*cfgName, flag.CommandLine)
	if err != nil {
		log.Fatal(err)
	}
	cfg.SetupLog()

	if *refName == "" || flag.NArg() == 0 {
		log.Fatal("expecting a reference and at least one BAM or SAM file")
	}

	refs, err := loadReferences(*refName)
	if err != nil {
		log.Fatalf("%s: %v", *refName, err)
	}
	log.WithField("sequences", len(refs)).Info("reference loaded")

	mdl, err := model.New(cfg.MaxInsertSize, cfg.MaxRepetition, cfg.MaxMotif, cfg.SizeGranularity)
	if err != nil {
		log.Fatal(err)
	}

	p := profiler.New(mdl, refs)
	p.MinMapQ = byte(cfg.MinMapQ)
	if err := p.SetScores(cfg.Scores()); err != nil {
		log.Fatal(err)
	}

	for _, fname := range flag.Args() {
		log.WithField("file", fname).Info("profiling")
		if err := profile(p, fname); err != nil {
			log.Fatalf("%s: %v", fname, err)
		}
	}

	log.Info(p.Stats)
	single, pair := mdl.Reads()
	log.WithFields(log.Fields{"single": single, "pair": pair}).Info("reads learned")

	if err := mdl.Save(*mdlName); err != nil {
		log.Fatalf("%s: %v", *mdlName, err)
	}
}
