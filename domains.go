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

package methpipe

/* -------------------------------------------------------------------------- */

import "bufio"
import "bytes"
import "compress/gzip"
import "fmt"
import "io"
import "os"
import "strconv"
import "strings"

/* -------------------------------------------------------------------------- */

// Container for hypo-methylated domains. Each domain spans a run of
// consecutive foreground sites and is scored by the sum of the posterior
// scores of the sites it covers.
type Domains struct {
  Seqnames []string
  Ranges   []Range
  Names    []string
  Scores   []float64
}

/* constructors
 * -------------------------------------------------------------------------- */

func NewDomains(seqnames []string, from, to []int, names []string, scores []float64) Domains {
  n := len(seqnames)
  if len(from) != n || len(to) != n || len(names) != n || len(scores) != n {
    panic("NewDomains(): invalid arguments!")
  }
  domains := Domains{}
  domains.Seqnames = seqnames
  domains.Ranges   = make([]Range, n)
  domains.Names    = names
  domains.Scores   = scores
  for i := 0; i < n; i++ {
    domains.Ranges[i] = NewRange(from[i], to[i])
  }
  return domains
}

/* -------------------------------------------------------------------------- */

func (domains Domains) Length() int {
  return len(domains.Seqnames)
}

func (domains Domains) Append(domains2 Domains) Domains {
  result := Domains{}
  result.Seqnames = append(domains.Seqnames, domains2.Seqnames...)
  result.Ranges   = append(domains.Ranges,   domains2.Ranges...)
  result.Names    = append(domains.Names,    domains2.Names...)
  result.Scores   = append(domains.Scores,   domains2.Scores...)
  return result
}

// Returns a subset of the domains given by indices.
func (domains Domains) Subset(indices []int) Domains {
  result := Domains{}
  result.Seqnames = make([]string,  len(indices))
  result.Ranges   = make([]Range,   len(indices))
  result.Names    = make([]string,  len(indices))
  result.Scores   = make([]float64, len(indices))
  for i, j := range indices {
    result.Seqnames[i] = domains.Seqnames[j]
    result.Ranges  [i] = domains.Ranges  [j]
    result.Names   [i] = domains.Names   [j]
    result.Scores  [i] = domains.Scores  [j]
  }
  return result
}

/* -------------------------------------------------------------------------- */

// Assemble domains from decoded site labels. Every maximal run of
// consecutive foreground sites within a segment yields one domain that
// extends from the start of its first site to the end of its last site.
// Runs never extend over segment boundaries. A run that reaches the end of
// a segment is closed at the last site of the segment. Domains are named
// HYPO0, HYPO1, ... in genomic order and scored by the sum of the site
// scores they cover.
func BuildDomains(sites MethSites, scores []float64, segments []Segment, classes []bool) Domains {
  n := sites.Length()
  if len(scores) != n || len(classes) != n {
    panic("BuildDomains(): invalid arguments!")
  }
  seqnames := []string{}
  from     := []int{}
  to       := []int{}
  names    := []string{}
  dscores  := []float64{}

  for _, segment := range segments {
    inDomain := false
    score    := 0.0

    for i := segment.From; i < segment.To; i++ {
      if classes[i] {
        if !inDomain {
          inDomain = true
          score    = 0.0
          seqnames = append(seqnames, sites.Seqnames[i])
          from     = append(from,     sites.Ranges[i].From)
          names    = append(names,    fmt.Sprintf("HYPO%d", len(names)))
        }
        score += scores[i]
      } else {
        if inDomain {
          inDomain = false
          to       = append(to,      sites.Ranges[i-1].To)
          dscores  = append(dscores, score)
        }
      }
    }
    // close the domain still open at the end of the segment
    if inDomain {
      to      = append(to,      sites.Ranges[segment.To-1].To)
      dscores = append(dscores, score)
    }
  }
  return NewDomains(seqnames, from, to, names, dscores)
}

/* convert to string
 * -------------------------------------------------------------------------- */

func (domains Domains) String() string {
  var buffer bytes.Buffer
  // number of lines to print
  const n int = 10

  printRow := func(i int) {
    if i != 0 {
      buffer.WriteString("\n")
    }
    buffer.WriteString(
      fmt.Sprintf("%10d %10s [%10d, %10d] | %10s %14f",
        i+1,
        domains.Seqnames[i],
        domains.Ranges[i].From,
        domains.Ranges[i].To,
        domains.Names[i],
        domains.Scores[i]))
  }

  // print header
  buffer.WriteString(
    fmt.Sprintf("%10s %10s %24s | %10s %14s\n",
      "", "seqnames", "ranges",
      "names", "scores"))

  // select rows to print
  if domains.Length() <= n+1 {
    // print all entries
    for i := 0; i < domains.Length(); i++ {
      printRow(i)
    }
  } else {
    // print first n/2 rows
    for i := 0; i < n/2; i++ {
      printRow(i)
    }
    buffer.WriteString(
      fmt.Sprintf("\n%10s %10s %24s | %10s", "", "...", "...", "..."))
    // print last n/2 rows
    for i := domains.Length() - n/2; i < domains.Length(); i++ {
      printRow(i)
    }
  }

  return buffer.String()
}

/* i/o
 * -------------------------------------------------------------------------- */

// Read domains from a six column bed file. The strand column is ignored.
func (domains *Domains) ReadBed(r io.Reader) error {
  scanner := bufio.NewScanner(r)

  seqnames := []string{}
  from     := []int{}
  to       := []int{}
  names    := []string{}
  scores   := []float64{}

  for scanner.Scan() {
    fields := strings.Fields(scanner.Text())
    if len(fields) == 0 {
      continue
    }
    if fields[0] == "track" {
      continue
    }
    if len(fields) < 6 {
      return fmt.Errorf("ReadBed(): bed file must have at least six columns!")
    }
    t1, err := strconv.ParseInt(fields[1], 10, 64); if err != nil {
      return err
    }
    t2, err := strconv.ParseInt(fields[2], 10, 64); if err != nil {
      return err
    }
    t3, err := strconv.ParseFloat(fields[4], 64); if err != nil {
      return err
    }
    seqnames = append(seqnames, fields[0])
    from     = append(from,     int(t1))
    to       = append(to,       int(t2))
    names    = append(names,    fields[3])
    scores   = append(scores,   t3)
  }
  *domains = NewDomains(seqnames, from, to, names, scores)

  return nil
}

func (domains *Domains) ImportBed(filename string) error {
  var r io.Reader
  // open file
  f, err := os.Open(filename)
  if err != nil {
    return err
  }
  defer f.Close()
  // check if file is gzipped
  if isGzip(filename) {
    g, err := gzip.NewReader(f)
    if err != nil {
      return err
    }
    defer g.Close()
    r = g
  } else {
    r = f
  }
  if err := domains.ReadBed(r); err != nil {
    return fmt.Errorf("ImportBed(): reading file `%s' failed: %v", filename, err)
  }
  return nil
}

/* -------------------------------------------------------------------------- */

// Write domains as a six column bed file.
func (domains Domains) WriteBed(w io.Writer) error {
  for i := 0; i < domains.Length(); i++ {
    if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%f\t%c\n",
      domains.Seqnames[i],
      domains.Ranges[i].From,
      domains.Ranges[i].To,
      domains.Names[i],
      domains.Scores[i], '+'); err != nil {
      return err
    }
  }
  return nil
}

func (domains Domains) ExportBed(filename string, compress bool) error {
  var buffer bytes.Buffer

  w := bufio.NewWriter(&buffer)
  if err := domains.WriteBed(w); err != nil {
    return err
  }
  w.Flush()

  return writeFile(filename, &buffer, compress)
}

// Write domains as a bed file with a track line for visualization in
// genome browsers.
func (domains Domains) WriteBrowserTrack(w io.Writer, name, description string) error {
  if _, err := fmt.Fprintf(w, "track name=\"%s\" description=\"%s\" visibility=1\n",
    name, description); err != nil {
    return err
  }
  return domains.WriteBed(w)
}

func (domains Domains) ExportBrowserTrack(filename, name, description string, compress bool) error {
  var buffer bytes.Buffer

  w := bufio.NewWriter(&buffer)
  if err := domains.WriteBrowserTrack(w, name, description); err != nil {
    return err
  }
  w.Flush()

  return writeFile(filename, &buffer, compress)
}
