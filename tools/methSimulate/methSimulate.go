/* Copyright (C) 2024 Mohammad Deen
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package main

/* -------------------------------------------------------------------------- */

import   "fmt"
import   "log"
import   "os"
import   "strconv"
import   "strings"
import   "time"

import   "github.com/pborman/getopt"

import . "github.com/MohammadDeen/methpipe"

/* -------------------------------------------------------------------------- */

type Config struct {
  Sites        int
  MeanCoverage float64
  MeanSpacing  int
  DesertRate   float64
  DesertGap    int
  Seed         uint64
  Verbose      int
}

/* -------------------------------------------------------------------------- */

func PrintStderr(config Config, level int, format string, args ...interface{}) {
  if config.Verbose >= level {
    fmt.Fprintf(os.Stderr, format, args...)
  }
}

/* -------------------------------------------------------------------------- */

func importGenome(config Config, filename string) Genome {
  genome := Genome{}
  PrintStderr(config, 1, "Reading genome `%s'... ", filename)
  if err := genome.Import(filename); err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  } else {
    PrintStderr(config, 1, "done\n")
  }
  return genome
}

/* -------------------------------------------------------------------------- */

func exportSites(config Config, filename string, sites MethSites) {
  if filename == "" {
    if err := sites.WriteBed(os.Stdout); err != nil {
      log.Fatal(err)
    }
  } else {
    PrintStderr(config, 1, "Writing methylation counts to `%s'... ", filename)
    if err := sites.ExportBed(filename, strings.HasSuffix(filename, ".gz")); err != nil {
      PrintStderr(config, 1, "failed\n")
      log.Fatal(err)
    }
    PrintStderr(config, 1, "done\n")
  }
}

func exportStates(config Config, filename string, sites MethSites, labels []bool) {
  // score each domain by the number of sites it contains
  scores := make([]float64, sites.Length())
  for i := 0; i < len(scores); i++ {
    scores[i] = 1.0
  }
  domains := BuildDomains(sites, scores, SegmentSites(sites, config.DesertGap), labels)

  PrintStderr(config, 1, "Writing simulated domains to `%s'... ", filename)
  if err := domains.ExportBed(filename, strings.HasSuffix(filename, ".gz")); err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  }
  PrintStderr(config, 1, "done\n")
}

/* -------------------------------------------------------------------------- */

func main() {
  log.SetFlags(0)

  config  := Config{}
  options := getopt.New()

  optSites      := options.    IntLong("sites",       'n',  10000,   "number of CpG sites to simulate [default: 10000]")
  optCoverage   := options. StringLong("coverage",     0 , "10.0",   "mean read coverage per site [default: 10.0]")
  optSpacing    := options.    IntLong("spacing",      0 ,  50,      "mean distance between consecutive sites [default: 50]")
  optDesertRate := options. StringLong("desert-rate",  0 , "0.001",  "probability of opening a desert after a site [default: 0.001]")
  optDesertGap  := options.    IntLong("desert-gap",   0 ,  10000,   "additional distance inserted at deserts [default: 10000]")
  optGenome     := options. StringLong("genome",       0 , "",       "genome file with chromosome sizes [default: single 249Mb chromosome]")
  optStates     := options. StringLong("states",       0 , "",       "export simulated hypo-methylated domains to this bed file")
  optSeed       := options. StringLong("seed",         0 , "",       "seed for the random number generator")
  optVerbose    := options.CounterLong("verbose",     'v',           "verbose level [-v or -vv]")
  optHelp       := options.   BoolLong("help",        'h',           "print help")

  options.SetParameters("[OUTPUT.bed]")
  options.Parse(os.Args)

  if *optHelp {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  if len(options.Args()) > 1 {
    options.PrintUsage(os.Stderr)
    os.Exit(1)
  }
  config.Sites       = *optSites
  config.MeanSpacing = *optSpacing
  config.DesertGap   = *optDesertGap
  config.Verbose     = *optVerbose

  if v, err := strconv.ParseFloat(*optCoverage, 64); err != nil {
    log.Fatal(err)
  } else {
    config.MeanCoverage = v
  }
  if v, err := strconv.ParseFloat(*optDesertRate, 64); err != nil {
    log.Fatal(err)
  } else {
    config.DesertRate = v
  }
  config.Seed = uint64(time.Now().UnixNano())
  if *optSeed != "" {
    if v, err := strconv.ParseUint(*optSeed, 10, 64); err != nil {
      log.Fatal(err)
    } else {
      config.Seed = v
    }
  }
  if config.Sites < 1 {
    log.Fatal("number of sites must be positive")
  }
  if config.MeanCoverage <= 0.0 {
    log.Fatal("mean coverage must be positive")
  }
  if config.MeanSpacing < 1 {
    log.Fatal("mean spacing must be positive")
  }
  if config.DesertRate < 0.0 || config.DesertRate > 1.0 {
    log.Fatal("desert rate must be a probability")
  }
  if config.DesertGap < 1 {
    log.Fatal("desert gap must be positive")
  }
  filenameOut := ""
  if len(options.Args()) == 1 {
    filenameOut = options.Args()[0]
  }
  genome := NewGenome([]string{"chr1"}, []int{249250621})
  if *optGenome != "" {
    genome = importGenome(config, *optGenome)
  }
  params := DefaultHMMParams(config.MeanCoverage)

  sites, labels := RandomMethSites(RandomSitesConfig{
    Sites       : config.Sites,
    MeanCoverage: config.MeanCoverage,
    MeanSpacing : config.MeanSpacing,
    DesertRate  : config.DesertRate,
    DesertGap   : config.DesertGap,
    Seed        : config.Seed }, params, genome)

  PrintStderr(config, 1, "Simulated %d sites\n", sites.Length())

  if *optStates != "" {
    exportStates(config, *optStates, sites, labels)
  }
  exportSites(config, filenameOut, sites)
}
