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
import "database/sql"
import "fmt"
import "io"
import "os"
import "sort"
import "strconv"
import "strings"

import _ "github.com/go-sql-driver/mysql"

/* -------------------------------------------------------------------------- */

// Container for CpG islands. Islands are assumed to be non-overlapping, as
// they are in the UCSC annotation tables.
type CpGIslands struct {
  Seqnames []string
  Ranges   []Range
  CpGNum   []int
  ObsExp   []float64
}

/* constructors
 * -------------------------------------------------------------------------- */

func NewCpGIslands(seqnames []string, from, to, cpgNum []int, obsExp []float64) CpGIslands {
  n := len(seqnames)
  if len(from) != n || len(to) != n || len(cpgNum) != n || len(obsExp) != n {
    panic("NewCpGIslands(): invalid arguments!")
  }
  islands := CpGIslands{}
  islands.Seqnames = seqnames
  islands.Ranges   = make([]Range, n)
  islands.CpGNum   = cpgNum
  islands.ObsExp   = obsExp
  for i := 0; i < n; i++ {
    islands.Ranges[i] = NewRange(from[i], to[i])
  }
  return islands
}

/* -------------------------------------------------------------------------- */

func (islands CpGIslands) Length() int {
  return len(islands.Seqnames)
}

/* import data from ucsc
 * -------------------------------------------------------------------------- */

// Import CpG islands from the UCSC mysql server for the given genome
// assembly, e.g. hg19.
func ImportCpGIslandsFromUCSC(genome string) (CpGIslands, error) {
  /* variables for storing a single database row */
  var iSeqname string
  var iFrom, iTo, iCpgNum int
  var iObsExp float64

  seqnames := []string{}
  from     := []int{}
  to       := []int{}
  cpgNum   := []int{}
  obsExp   := []float64{}

  /* open connection */
  db, err := sql.Open("mysql",
    fmt.Sprintf("genome@tcp(genome-mysql.cse.ucsc.edu:3306)/%s", genome))
  if err != nil {
    return CpGIslands{}, err
  }
  defer db.Close()

  if err := db.Ping(); err != nil {
    return CpGIslands{}, err
  }

  /* receive data */
  rows, err := db.Query(
    fmt.Sprintf("SELECT chrom, chromStart, chromEnd, cpgNum, obsExp FROM %s", "cpgIslandExt"))
  if err != nil {
    return CpGIslands{}, err
  }
  defer rows.Close()
  for rows.Next() {
    if err := rows.Scan(&iSeqname, &iFrom, &iTo, &iCpgNum, &iObsExp); err != nil {
      return CpGIslands{}, err
    }
    seqnames = append(seqnames, iSeqname)
    from     = append(from,     iFrom)
    to       = append(to,       iTo)
    cpgNum   = append(cpgNum,   iCpgNum)
    obsExp   = append(obsExp,   iObsExp)
  }
  return NewCpGIslands(seqnames, from, to, cpgNum, obsExp), nil
}

/* i/o
 * -------------------------------------------------------------------------- */

// Read CpG islands from a table with columns seqnames, from, to, cpgNum
// and obsExp. The first line must be a header naming these columns.
func (islands *CpGIslands) ReadTable(r io.Reader) error {
  scanner := bufio.NewScanner(r)

  seqnames := []string{}
  from     := []int{}
  to       := []int{}
  cpgNum   := []int{}
  obsExp   := []float64{}

  // check header
  if !scanner.Scan() {
    return fmt.Errorf("ReadTable(): header is missing")
  }
  fields := strings.Fields(scanner.Text())
  if len(fields) != 5 ||
    fields[0] != "seqnames" || fields[1] != "from"   || fields[2] != "to" ||
    fields[3] != "cpgNum"   || fields[4] != "obsExp" {
    return fmt.Errorf("ReadTable(): invalid header")
  }
  for scanner.Scan() {
    fields := strings.Fields(scanner.Text())
    if len(fields) == 0 {
      continue
    }
    if len(fields) != 5 {
      return fmt.Errorf("ReadTable(): table must have five columns!")
    }
    t1, err := strconv.ParseInt(fields[1], 10, 64); if err != nil {
      return err
    }
    t2, err := strconv.ParseInt(fields[2], 10, 64); if err != nil {
      return err
    }
    t3, err := strconv.ParseInt(fields[3], 10, 64); if err != nil {
      return err
    }
    t4, err := strconv.ParseFloat(fields[4], 64); if err != nil {
      return err
    }
    seqnames = append(seqnames, fields[0])
    from     = append(from,     int(t1))
    to       = append(to,       int(t2))
    cpgNum   = append(cpgNum,   int(t3))
    obsExp   = append(obsExp,   t4)
  }
  *islands = NewCpGIslands(seqnames, from, to, cpgNum, obsExp)

  return nil
}

func (islands *CpGIslands) ImportTable(filename string) error {
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
  if err := islands.ReadTable(r); err != nil {
    return fmt.Errorf("ImportTable(): reading file `%s' failed: %v", filename, err)
  }
  return nil
}

/* -------------------------------------------------------------------------- */

func (islands CpGIslands) WriteTable(w io.Writer) error {
  if _, err := fmt.Fprintf(w, "%s %s %s %s %s\n",
    "seqnames", "from", "to", "cpgNum", "obsExp"); err != nil {
    return err
  }
  for i := 0; i < islands.Length(); i++ {
    if _, err := fmt.Fprintf(w, "%s %d %d %d %f\n",
      islands.Seqnames[i],
      islands.Ranges[i].From,
      islands.Ranges[i].To,
      islands.CpGNum[i],
      islands.ObsExp[i]); err != nil {
      return err
    }
  }
  return nil
}

func (islands CpGIslands) ExportTable(filename string, compress bool) error {
  var buffer bytes.Buffer

  w := bufio.NewWriter(&buffer)
  if err := islands.WriteTable(w); err != nil {
    return err
  }
  w.Flush()

  return writeFile(filename, &buffer, compress)
}

/* -------------------------------------------------------------------------- */

type rangeSlice []Range

func (s rangeSlice) Len() int {
  return len(s)
}

func (s rangeSlice) Less(i, j int) bool {
  return s[i].From < s[j].From
}

func (s rangeSlice) Swap(i, j int) {
  s[i], s[j] = s[j], s[i]
}

/* -------------------------------------------------------------------------- */

// Compute for every domain the number of overlapping CpG islands and the
// fraction of the domain covered by islands. The order of domains and
// islands is irrelevant, but islands must not overlap each other.
func AnnotateCpGIslands(domains Domains, islands CpGIslands) ([]int, []float64) {
  counts   := make([]int,     domains.Length())
  fraction := make([]float64, domains.Length())

  // group island ranges by chromosome
  byChrom := make(map[string]rangeSlice)
  for i := 0; i < islands.Length(); i++ {
    byChrom[islands.Seqnames[i]] = append(byChrom[islands.Seqnames[i]], islands.Ranges[i])
  }
  for _, ranges := range byChrom {
    sort.Sort(ranges)
  }
  for i := 0; i < domains.Length(); i++ {
    d := domains.Ranges[i]
    r := byChrom[domains.Seqnames[i]]
    // first island that ends after the domain starts
    k := sort.Search(len(r), func(j int) bool {
      return r[j].To > d.From
    })
    overlap := 0
    for ; k < len(r) && d.Overlaps(r[k]); k++ {
      counts[i]++
      overlap += d.Intersection(r[k]).Length()
    }
    if d.Length() > 0 {
      fraction[i] = float64(overlap)/float64(d.Length())
    }
  }
  return counts, fraction
}
