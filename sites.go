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

import "bytes"
import "fmt"

/* -------------------------------------------------------------------------- */

// Container for per-site methylation counts, i.e. for every CpG site the
// number of methylated and unmethylated read observations. Sites are stored
// in genomic order, one contiguous block per chromosome.
type MethSites struct {
  Seqnames []string
  Ranges   []Range
  Meth     []float64
  Unmeth   []float64
}

/* constructors
 * -------------------------------------------------------------------------- */

func NewMethSites(seqnames []string, from, to []int, meth, unmeth []float64) MethSites {
  n := len(seqnames)
  if len(from) != n || len(to) != n || len(meth) != n || len(unmeth) != n {
    panic("NewMethSites(): invalid arguments!")
  }
  sites := MethSites{}
  sites.Seqnames = seqnames
  sites.Ranges   = make([]Range, n)
  sites.Meth     = meth
  sites.Unmeth   = unmeth
  for i := 0; i < n; i++ {
    sites.Ranges[i] = NewRange(from[i], to[i])
    if meth[i] < 0 || unmeth[i] < 0 {
      panic("NewMethSites(): negative read counts!")
    }
  }
  return sites
}

func NewEmptyMethSites(n int) MethSites {
  return MethSites{
    Seqnames: make([]string,  n),
    Ranges  : make([]Range,   n),
    Meth    : make([]float64, n),
    Unmeth  : make([]float64, n) }
}

/* -------------------------------------------------------------------------- */

func (sites MethSites) Length() int {
  return len(sites.Seqnames)
}

// Number of reads observed at site i.
func (sites MethSites) Reads(i int) float64 {
  return sites.Meth[i] + sites.Unmeth[i]
}

// Average number of reads per site.
func (sites MethSites) MeanCoverage() float64 {
  n := sites.Length()
  if n == 0 {
    return 0.0
  }
  sum := 0.0
  for i := 0; i < n; i++ {
    sum += sites.Reads(i)
  }
  return sum/float64(n)
}

func (sites MethSites) Clone() MethSites {
  result := NewEmptyMethSites(sites.Length())
  copy(result.Seqnames, sites.Seqnames)
  copy(result.Ranges,   sites.Ranges)
  copy(result.Meth,     sites.Meth)
  copy(result.Unmeth,   sites.Unmeth)
  return result
}

func (sites MethSites) Append(sites2 MethSites) MethSites {
  result := MethSites{}
  result.Seqnames = append(sites.Seqnames, sites2.Seqnames...)
  result.Ranges   = append(sites.Ranges,   sites2.Ranges...)
  result.Meth     = append(sites.Meth,     sites2.Meth...)
  result.Unmeth   = append(sites.Unmeth,   sites2.Unmeth...)
  return result
}

// Returns a subset of the sites given by indices.
func (sites MethSites) Subset(indices []int) MethSites {
  result := NewEmptyMethSites(len(indices))
  for i, j := range indices {
    result.Seqnames[i] = sites.Seqnames[j]
    result.Ranges  [i] = sites.Ranges  [j]
    result.Meth    [i] = sites.Meth    [j]
    result.Unmeth  [i] = sites.Unmeth  [j]
  }
  return result
}

// Returns the sites in the interval [ifrom, ito).
func (sites MethSites) Slice(ifrom, ito int) MethSites {
  ifrom = iMax(ifrom, 0)
  ito   = iMin(ito, sites.Length())
  if ifrom > ito {
    ifrom = ito
  }
  result := MethSites{}
  result.Seqnames = sites.Seqnames[ifrom:ito]
  result.Ranges   = sites.Ranges  [ifrom:ito]
  result.Meth     = sites.Meth    [ifrom:ito]
  result.Unmeth   = sites.Unmeth  [ifrom:ito]
  return result
}

/* -------------------------------------------------------------------------- */

// Check that sites are given in genomic order, i.e. chromosomes form
// contiguous blocks that do not reappear and within each block start
// positions are non-decreasing.
func (sites MethSites) IsSorted() bool {
  seen := make(map[string]bool)
  for i := 0; i < sites.Length(); i++ {
    if i == 0 || sites.Seqnames[i] != sites.Seqnames[i-1] {
      if seen[sites.Seqnames[i]] {
        return false
      }
      seen[sites.Seqnames[i]] = true
    } else {
      if sites.Ranges[i].From < sites.Ranges[i-1].From {
        return false
      }
    }
  }
  return true
}

// Remove all sites without read observations. Sites with zero coverage
// carry no methylation signal and must be dropped before segmentation.
func (sites MethSites) FilterCovered() MethSites {
  indices := []int{}
  for i := 0; i < sites.Length(); i++ {
    if sites.Reads(i) > 0 {
      indices = append(indices, i)
    }
  }
  return sites.Subset(indices)
}

/* convert to string
 * -------------------------------------------------------------------------- */

func (sites MethSites) String() string {
  var buffer bytes.Buffer
  // number of lines to print
  const n int = 10

  printRow := func(i int) {
    if i != 0 {
      buffer.WriteString("\n")
    }
    buffer.WriteString(
      fmt.Sprintf("%10d %10s [%10d, %10d] | %8.0f %8.0f",
        i+1,
        sites.Seqnames[i],
        sites.Ranges[i].From,
        sites.Ranges[i].To,
        sites.Meth[i],
        sites.Unmeth[i]))
  }

  // print header
  buffer.WriteString(
    fmt.Sprintf("%10s %10s %24s | %8s %8s\n",
      "", "seqnames", "ranges",
      "meth", "unmeth"))

  // select rows to print
  if sites.Length() <= n+1 {
    // print all entries
    for i := 0; i < sites.Length(); i++ {
      printRow(i)
    }
  } else {
    // print first n/2 rows
    for i := 0; i < n/2; i++ {
      printRow(i)
    }
    buffer.WriteString(
      fmt.Sprintf("\n%10s %10s %24s | %8s", "", "...", "...", "..."))
    // print last n/2 rows
    for i := sites.Length() - n/2; i < sites.Length(); i++ {
      printRow(i)
    }
  }

  return buffer.String()
}
