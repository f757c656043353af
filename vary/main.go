package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
	"readsim/config"
	"readsim/io/fasta"
	"readsim/model"
	"readsim/variation"
	"readsim/variator"

	"github.com/cheggaaa/pb/v3"
	log "github.com/sirupsen/logrus"
)

var cfgName = flag.String("config", "", "configuration file")
var vcfName = flag.String("vcf", "", "VCF file with known variations")
var udvName = flag.String("udv", "", "user defined variations")
var dictName = flag.String("dict", "", "dictionary from FASTA labels to variation regions")
var mdlName = flag.String("model", "", "model file, enables the amplification of tandem repeats")
var outName = flag.String("out", "allele", "output prefix")
var progress = flag.Bool("progress", true, "show progress")
var report = flag.Bool("report", true, "write the positions of the applied variations in each allele")

var _ = flag.Int64("seed", 0, "random seed (0 picks one)")
var _ = flag.Int("ploidy", 2, "number of copies of each chromosome")
var _ = flag.String("log_level", "info", "log level")

type output struct {
	f	*os.File
	w	*fasta.Writer
}

func create(fname string) (*output, error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, err
	}

	return &output{f, fasta.NewWriter(f)}, nil
}

func (o *output) Close() error {
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return err
	}

	return o.f.Close()
}

// Tab separated list of the applied variations: sequence, reference
// position, allele position (both 1-based), reference and alternative
type placements struct {
	f	*os.File
	w	*bufio.Writer
}

func createPlacements(fname string) (*placements, error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, err
	}

	return &placements{f, bufio.NewWriter(f)}, nil
}

func (p *placements) Write(label string, ps []variator.Placement) error {
	for _, pl := range ps {
		alt := string(pl.Alt)
		if alt == "" {
			alt = "."
		}

		if _, err := fmt.Fprintf(p.w, "%s\t%d\t%d\t%s\t%s\n", label, pl.Pos + 1, pl.AllelePos + 1, pl.Ref, alt); err != nil {
			return err
		}
	}

	return nil
}

func (p *placements) Close() error {
	if err := p.w.Flush(); err != nil {
		p.f.Close()
		return err
	}

	return p.f.Close()
}

func loadVariations(ploidy int) (udv, vcf *variation.Set, err error) {
	var vars []*variation.Variation

	if *udvName != "" {
		if vars, err = variation.LoadUDV(*udvName, ploidy); err != nil {
			return
		}
	}
	udv = variation.NewSet(vars)

	vars = nil
	if *vcfName != "" {
		if vars, err = variation.LoadVCF(*vcfName); err != nil {
			return
		}
	}
	vcf = variation.NewSet(vars)

	return
}

func main() {
	flag.Parse()

	cfg, err := config.FromFlags(*cfgName, flag.CommandLine)
	if err != nil {
		log.Fatal(err)
	}
	cfg.SetupLog()

	if flag.NArg() != 1 {
		log.Fatal("expecting a reference FASTA file")
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.WithField("seed", seed).Info("random seed")

	dict := make(variation.Dictionary)
	if *dictName != "" {
		if dict, err = variation.LoadDictionary(*dictName); err != nil {
			log.Fatalf("%s: %v", *dictName, err)
		}
	}

	udv, vcf, err := loadVariations(cfg.Ploidy)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{"udv": udv.Len(), "vcf": vcf.Len()}).Info("variations loaded")

	v := variator.New(cfg.Ploidy, rand.New(rand.NewSource(seed)))
	if *mdlName != "" {
		mdl, err := model.Load(*mdlName)
		if err != nil {
			log.Fatalf("%s: %v", *mdlName, err)
		}

		v.SetModel(mdl)
	}

	// sequence and alignment of each allele
	var outs [][2]*output
	for i := 0; i < cfg.Ploidy; i++ {
		var o [2]*output
		for j, suffix := range []string{".fa", ".alg"} {
			if o[j], err = create(fmt.Sprintf("%s_%d%s", *outName, i + 1, suffix)); err != nil {
				log.Fatal(err)
			}
		}

		outs = append(outs, o)
	}

	var reps []*placements
	if *report {
		for i := 0; i < cfg.Ploidy; i++ {
			r, err := createPlacements(fmt.Sprintf("%s_%d.var", *outName, i + 1))
			if err != nil {
				log.Fatal(err)
			}

			reps = append(reps, r)
		}
	}

	var bar *pb.ProgressBar
	if *progress {
		bar = pb.Full.Start(0)
	}

	ref := flag.Arg(0)
	err = fasta.Parse(ref, func(label, desc string, seq []byte) error {
		region := dict.Translate(label)
		vars := v.Merge(udv.Region(region), vcf.Region(region))
		log.WithFields(log.Fields{"sequence": label, "region": region, "variations": len(vars)}).Debug("varying")

		alleles, err := v.Vary(region, seq, vars)
		if err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}

		for i, a := range alleles {
			if err := outs[i][0].w.Write(label, a.Sequence(), fasta.LineWidth); err != nil {
				return err
			}

			if err := outs[i][1].w.Write(label, a.Alignment(), fasta.LineWidth); err != nil {
				return err
			}

			if reps != nil {
				ps, err := v.Placements(i)
				if err != nil {
					return err
				}

				if err := reps[i].Write(label, ps); err != nil {
					return err
				}
			}
		}

		if bar != nil {
			bar.Increment()
		}

		return nil
	})

	if bar != nil {
		bar.Finish()
	}

	if err != nil {
		log.Fatalf("%s: %v", ref, err)
	}

	for _, o := range outs {
		for _, oo := range o {
			if err := oo.Close(); err != nil {
				log.Fatal(err)
			}
		}
	}

	for _, r := range reps {
		if err := r.Close(); err != nil {
			log.Fatal(err)
		}
	}

	log.Info(v.Stats)
}
