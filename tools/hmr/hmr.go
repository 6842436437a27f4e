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

import   "bufio"
import   "fmt"
import   "io"
import   "log"
import   "math"
import   "math/rand"
import   "os"
import   "strconv"
import   "time"

import   "github.com/pborman/getopt"

import   "gonum.org/v1/plot"
import   "gonum.org/v1/plot/plotter"
import   "gonum.org/v1/plot/plotutil"
import   "gonum.org/v1/plot/vg"

import . "github.com/MohammadDeen/methpipe"

import   "github.com/MohammadDeen/methpipe/lib/progress"

/* -------------------------------------------------------------------------- */

type Config struct {
  DesertSize    int
  MaxIterations int
  Tolerance     float64
  MinProb       float64
  Fdr           float64
  Permutations  int
  Seed          int64
  Viterbi       bool
  Browser       bool
  Name          string
  Threads       int
  Status        bool
  Verbose       int
}

/* -------------------------------------------------------------------------- */

func PrintStderr(config Config, level int, format string, args ...interface{}) {
  if config.Verbose >= level {
    fmt.Fprintf(os.Stderr, format, args...)
  }
}

/* -------------------------------------------------------------------------- */

func importMethSites(config Config, filename string) MethSites {
  sites := MethSites{}
  PrintStderr(config, 1, "Reading methylation counts from `%s'... ", filename)
  if err := sites.ImportBed(filename); err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  } else {
    PrintStderr(config, 1, "done\n")
  }
  return sites
}

func exportDomains(config Config, filename string, domains Domains) {
  var writer io.Writer

  if filename == "" {
    writer = os.Stdout
  } else {
    f, err := os.Create(filename)
    if err != nil {
      log.Fatal(err)
    }
    buffer := bufio.NewWriter(f)
    writer  = buffer
    defer f.Close()
    defer buffer.Flush()
    PrintStderr(config, 1, "Writing domains to `%s'... ", filename)
  }
  if config.Browser {
    description := fmt.Sprintf("hypo-methylated regions (fdr=%g)", config.Fdr)
    if err := domains.WriteBrowserTrack(writer, config.Name, description); err != nil {
      PrintStderr(config, 1, "failed\n")
      log.Fatal(err)
    }
  } else {
    if err := domains.WriteBed(writer); err != nil {
      PrintStderr(config, 1, "failed\n")
      log.Fatal(err)
    }
  }
  if filename != "" {
    PrintStderr(config, 1, "done\n")
  }
}

func exportBedGraph(config Config, filename string, sites MethSites, values []float64) {
  PrintStderr(config, 1, "Writing track to `%s'... ", filename)
  if err := sites.ExportBedGraph(filename, values, false); err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  } else {
    PrintStderr(config, 1, "done\n")
  }
}

/* -------------------------------------------------------------------------- */

func saveNullPlot(config Config, filename string, domains Domains, cutoff float64) {
  if domains.Length() == 0 {
    PrintStderr(config, 1, "No null domains available, skipping histogram\n")
    return
  }
  values := make(plotter.Values, domains.Length())
  copy(values, domains.Scores)

  p := plot.New()
  p.Title.Text   = ""
  p.X.Label.Text = "posterior score"
  p.Y.Label.Text = "null domains"

  h, err := plotter.NewHist(values, 50)
  if err != nil {
    log.Fatal(err)
  }
  p.Add(h)

  // mark the cutoff unless it is degenerate
  if cutoff > -math.MaxFloat64 && cutoff < math.MaxFloat64 {
    ymax := 0.0
    for _, bin := range h.Bins {
      if bin.Weight > ymax {
        ymax = bin.Weight
      }
    }
    xy := make(plotter.XYs, 2)
    xy[0].X = cutoff
    xy[0].Y = 0.0
    xy[1].X = cutoff
    xy[1].Y = ymax
    if err := plotutil.AddLines(p, xy); err != nil {
      log.Fatal(err)
    }
  }
  if err := p.Save(8*vg.Inch, 4*vg.Inch, filename); err != nil {
    log.Fatal(err)
  }
  PrintStderr(config, 1, "Wrote null score histogram to `%s'\n", filename)
}

/* -------------------------------------------------------------------------- */

func decode(config Config, model TwoStateHMM, sites MethSites, segments []Segment, params HMMParams) []bool {
  if config.Viterbi {
    classes, err := model.ViterbiDecoding(sites, segments, params)
    if err != nil {
      log.Fatal(err)
    }
    return classes
  }
  classes, _, err := model.PosteriorDecoding(sites, segments, params)
  if err != nil {
    log.Fatal(err)
  }
  return classes
}

/* -------------------------------------------------------------------------- */

func callDomains(config Config, filenameIn, filenameOut, filenameScores, filenameTrans, filenamePlot string) {
  sites := importMethSites(config, filenameIn)
  n     := sites.Length()

  sites = sites.FilterCovered()

  PrintStderr(config, 1, "Read %d sites of which %d have no coverage\n", n, n-sites.Length())

  if sites.Length() == 0 {
    log.Fatal("input contains no covered CpG sites")
  }
  segments := SegmentSites(sites, config.DesertSize)

  PrintStderr(config, 1, "Partitioned sites into %d segments (mean coverage %.2f)\n",
    len(segments), sites.MeanCoverage())

  model := TwoStateHMM{
    MinProb      : config.MinProb,
    Tolerance    : config.Tolerance,
    MaxIterations: config.MaxIterations,
    Threads      : config.Threads,
    Verbose      : config.Verbose >= 2 }

  params := DefaultHMMParams(sites.MeanCoverage())

  PrintStderr(config, 1, "Training two-state HMM... ")
  params, iterations, err := model.BaumWelchTraining(sites, segments, params)
  if err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  }
  PrintStderr(config, 1, "done (%d iterations)\n", iterations)
  PrintStderr(config, 2, "%v\n", params)

  classes := decode(config, model, sites, segments, params)

  scores, err := model.PosteriorScores(sites, segments, params, true)
  if err != nil {
    log.Fatal(err)
  }
  if filenameScores != "" {
    exportBedGraph(config, filenameScores, sites, scores)
  }
  if filenameTrans != "" {
    fgToBg, err := model.TransitionPosteriors(sites, segments, params, FgToBg)
    if err != nil {
      log.Fatal(err)
    }
    bgToFg, err := model.TransitionPosteriors(sites, segments, params, BgToFg)
    if err != nil {
      log.Fatal(err)
    }
    for i := 0; i < len(fgToBg); i++ {
      fgToBg[i] = math.Max(fgToBg[i], bgToFg[i])
    }
    exportBedGraph(config, filenameTrans, sites, fgToBg)
  }
  domains := BuildDomains(sites, scores, segments, classes)

  PrintStderr(config, 1, "Found %d candidate domains\n", domains.Length())

  // estimate a score cutoff on domains obtained from permuted data
  rng := rand.New(rand.NewSource(config.Seed))

  nullDomains := Domains{}
  for k := 0; k < config.Permutations; k++ {
    shuffled := ShuffleSites(sites, segments, rng)

    nullClasses := decode(config, model, shuffled, segments, params)
    nullScores, err := model.PosteriorScores(shuffled, segments, params, true)
    if err != nil {
      log.Fatal(err)
    }
    nullDomains = nullDomains.Append(
      BuildDomains(shuffled, nullScores, segments, nullClasses))

    if config.Status {
      progress.New(config.Permutations, 1000).PrintStderr(k+1)
    }
  }
  cutoff := PosteriorCutoff(nullDomains, config.Fdr)

  PrintStderr(config, 1, "Computed score cutoff %g (fdr=%g, %d null domains)\n",
    cutoff, config.Fdr, nullDomains.Length())

  if filenamePlot != "" {
    saveNullPlot(config, filenamePlot, nullDomains, cutoff)
  }
  domains = FilterDomains(domains, cutoff)

  exportDomains(config, filenameOut, domains)
}

/* -------------------------------------------------------------------------- */

func main() {
  log.SetFlags(0)

  config  := Config{}
  options := getopt.New()

  optDesertSize   := options.    IntLong("desert",        'd',  2000,    "maximum distance between covered sites within a segment [default: 2000]")
  optIterations   := options.    IntLong("iterations",    'i',  10,      "maximum number of Baum-Welch iterations [default: 10]")
  optFdr          := options. StringLong("fdr",           'F', "0.05",   "false discovery rate for domain filtering [default: 0.05]")
  optTolerance    := options. StringLong("tolerance",      0 , "1e-10",  "convergence tolerance for model training [default: 1e-10]")
  optMinProb      := options. StringLong("min-prob",       0 , "1e-10",  "lower bound for start and transition probabilities [default: 1e-10]")
  optPermutations := options.    IntLong("permutations",   0 ,  1,       "number of permutations for the score cutoff [default: 1]")
  optSeed         := options. StringLong("seed",           0 , "",       "seed for the random number generator")
  optViterbi      := options.   BoolLong("viterbi",       'V',           "use Viterbi instead of posterior decoding")
  optBrowser      := options.   BoolLong("browser",       'B',           "print a genome browser track line before the domains")
  optName         := options. StringLong("name",          'N', "HMR",    "name of the genome browser track [default: HMR]")
  optScores       := options. StringLong("scores",         0 , "",       "export posterior scores to this bedGraph file")
  optTrans        := options. StringLong("trans",          0 , "",       "export transition posteriors to this bedGraph file")
  optNullPlot     := options. StringLong("null-plot",      0 , "",       "plot a histogram of null domain scores to this file")
  optThreads      := options.    IntLong("threads",        0 ,  1,       "number of threads [default: 1]")
  optStatus       := options.   BoolLong("status",         0 ,           "show progress of the permutation step")
  optVerbose      := options.CounterLong("verbose",       'v',           "verbose level [-v or -vv]")
  optHelp         := options.   BoolLong("help",          'h',           "print help")

  options.SetParameters("<METHYLATION.bed> [DOMAINS.bed]")
  options.Parse(os.Args)

  if *optHelp {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  if len(options.Args()) == 0 {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  if len(options.Args()) > 2 {
    options.PrintUsage(os.Stderr)
    os.Exit(1)
  }
  config.DesertSize    = *optDesertSize
  config.MaxIterations = *optIterations
  config.Permutations  = *optPermutations
  config.Viterbi       = *optViterbi
  config.Browser       = *optBrowser
  config.Name          = *optName
  config.Threads       = *optThreads
  config.Status        = *optStatus
  config.Verbose       = *optVerbose

  if v, err := strconv.ParseFloat(*optFdr, 64); err != nil {
    log.Fatal(err)
  } else {
    config.Fdr = v
  }
  if v, err := strconv.ParseFloat(*optTolerance, 64); err != nil {
    log.Fatal(err)
  } else {
    config.Tolerance = v
  }
  if v, err := strconv.ParseFloat(*optMinProb, 64); err != nil {
    log.Fatal(err)
  } else {
    config.MinProb = v
  }
  config.Seed = time.Now().UnixNano()
  if *optSeed != "" {
    if v, err := strconv.ParseInt(*optSeed, 10, 64); err != nil {
      log.Fatal(err)
    } else {
      config.Seed = v
    }
  }
  if config.DesertSize < 0 {
    log.Fatal("desert size must be non-negative")
  }
  if config.Permutations < 1 {
    log.Fatal("number of permutations must be positive")
  }
  if config.Threads < 1 {
    log.Fatal("number of threads must be positive")
  }
  filenameIn  := options.Args()[0]
  filenameOut := ""
  if len(options.Args()) == 2 {
    filenameOut = options.Args()[1]
  }
  callDomains(config, filenameIn, filenameOut, *optScores, *optTrans, *optNullPlot)
}
