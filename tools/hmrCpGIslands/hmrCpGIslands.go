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
import   "os"
import   "strings"

import   "github.com/pborman/getopt"

import . "github.com/MohammadDeen/methpipe"

/* -------------------------------------------------------------------------- */

type Config struct {
  Verbose int
}

/* -------------------------------------------------------------------------- */

func PrintStderr(config Config, level int, format string, args ...interface{}) {
  if config.Verbose >= level {
    fmt.Fprintf(os.Stderr, format, args...)
  }
}

/* -------------------------------------------------------------------------- */

func importDomains(config Config, filename string) Domains {
  domains := Domains{}
  PrintStderr(config, 1, "Reading domains from `%s'... ", filename)
  if err := domains.ImportBed(filename); err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  } else {
    PrintStderr(config, 1, "done\n")
  }
  return domains
}

func importIslandsUCSC(config Config, genome string) CpGIslands {
  PrintStderr(config, 1, "Fetching CpG islands for `%s' from UCSC... ", genome)
  islands, err := ImportCpGIslandsFromUCSC(genome)
  if err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  }
  PrintStderr(config, 1, "done\n")
  return islands
}

func importIslandsTable(config Config, filename string) CpGIslands {
  islands := CpGIslands{}
  PrintStderr(config, 1, "Reading CpG islands from `%s'... ", filename)
  if err := islands.ImportTable(filename); err != nil {
    PrintStderr(config, 1, "failed\n")
    log.Fatal(err)
  } else {
    PrintStderr(config, 1, "done\n")
  }
  return islands
}

/* -------------------------------------------------------------------------- */

func exportIslands(config Config, filename string, islands CpGIslands) {
  if filename == "" {
    if err := islands.WriteTable(os.Stdout); err != nil {
      log.Fatal(err)
    }
  } else {
    PrintStderr(config, 1, "Writing CpG islands to `%s'... ", filename)
    if err := islands.ExportTable(filename, strings.HasSuffix(filename, ".gz")); err != nil {
      PrintStderr(config, 1, "failed\n")
      log.Fatal(err)
    }
    PrintStderr(config, 1, "done\n")
  }
}

func exportAnnotation(config Config, filename string, domains Domains, counts []int, overlaps []float64) {
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
    PrintStderr(config, 1, "Writing annotated domains to `%s'... ", filename)
  }
  fmt.Fprintf(writer, "seqnames from to name score islands overlap\n")
  for i := 0; i < domains.Length(); i++ {
    fmt.Fprintf(writer, "%s %d %d %s %f %d %f\n",
      domains.Seqnames[i],
      domains.Ranges[i].From,
      domains.Ranges[i].To,
      domains.Names[i],
      domains.Scores[i],
      counts[i],
      overlaps[i])
  }
  if filename != "" {
    PrintStderr(config, 1, "done\n")
  }
}

/* -------------------------------------------------------------------------- */

func annotateDomains(config Config, filenameIn, filenameOut string, islands CpGIslands) {
  domains := importDomains(config, filenameIn)

  counts, overlaps := AnnotateCpGIslands(domains, islands)

  exportAnnotation(config, filenameOut, domains, counts, overlaps)
}

/* -------------------------------------------------------------------------- */

func main() {
  log.SetFlags(0)

  config  := Config{}
  options := getopt.New()

  optUcsc    := options. StringLong("ucsc",     0 , "", "fetch CpG islands for the given genome assembly from UCSC")
  optTable   := options. StringLong("table",    0 , "", "read CpG islands from a table file")
  optFetch   := options.   BoolLong("fetch",    0 ,     "do not annotate, export the CpG islands as a table")
  optVerbose := options.CounterLong("verbose", 'v',     "verbose level [-v or -vv]")
  optHelp    := options.   BoolLong("help",    'h',     "print help")

  options.SetParameters("<DOMAINS.bed> [OUTPUT.table]")
  options.Parse(os.Args)

  if *optHelp {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  config.Verbose = *optVerbose

  if *optUcsc != "" && *optTable != "" {
    log.Fatal("options --ucsc and --table are mutually exclusive")
  }
  if *optFetch {
    if *optUcsc == "" {
      log.Fatal("option --fetch requires --ucsc")
    }
    if len(options.Args()) > 1 {
      options.PrintUsage(os.Stderr)
      os.Exit(1)
    }
    filenameOut := ""
    if len(options.Args()) == 1 {
      filenameOut = options.Args()[0]
    }
    exportIslands(config, filenameOut, importIslandsUCSC(config, *optUcsc))
    return
  }
  if len(options.Args()) == 0 {
    options.PrintUsage(os.Stdout)
    os.Exit(0)
  }
  if len(options.Args()) > 2 {
    options.PrintUsage(os.Stderr)
    os.Exit(1)
  }
  if *optUcsc == "" && *optTable == "" {
    log.Fatal("no CpG islands given, use either --ucsc or --table")
  }
  islands := CpGIslands{}
  if *optUcsc != "" {
    islands = importIslandsUCSC(config, *optUcsc)
  } else {
    islands = importIslandsTable(config, *optTable)
  }
  filenameIn  := options.Args()[0]
  filenameOut := ""
  if len(options.Args()) == 2 {
    filenameOut = options.Args()[1]
  }
  annotateDomains(config, filenameIn, filenameOut, islands)
}
