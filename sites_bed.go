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

/* i/o
 * -------------------------------------------------------------------------- */

// Read methylation counts from a six column bed file. The name column must
// have the format `<label>:<depth>' where depth is the number of reads
// covering the site, and the score column gives the fraction of methylated
// reads. The number of methylated reads is recovered as int(fraction*depth).
// Records must be sorted, i.e. chromosomes must form contiguous blocks and
// start positions must be non-decreasing within each block.
func (sites *MethSites) ReadBed(r io.Reader) error {
  scanner := bufio.NewScanner(r)

  seqnames := []string{}
  from     := []int{}
  to       := []int{}
  meth     := []float64{}
  unmeth   := []float64{}

  // variables for checking the sort order
  seen     := make(map[string]bool)
  prevName := ""
  prevFrom := 0

  for i := 1; scanner.Scan(); i++ {
    fields := strings.Fields(scanner.Text())
    if len(fields) == 0 {
      continue
    }
    if len(fields) < 6 {
      return fmt.Errorf("ReadBed(): bed file must have at least six columns (line %d)", i)
    }
    t1, err := strconv.ParseInt(fields[1], 10, 64); if err != nil {
      return err
    }
    t2, err := strconv.ParseInt(fields[2], 10, 64); if err != nil {
      return err
    }
    k := strings.Index(fields[3], ":")
    if k == -1 {
      return fmt.Errorf("ReadBed(): invalid name field `%s' (line %d): expected format `<label>:<depth>'", fields[3], i)
    }
    t3, err := strconv.ParseInt(fields[3][k+1:], 10, 64); if err != nil {
      return fmt.Errorf("ReadBed(): invalid read depth `%s' (line %d)", fields[3][k+1:], i)
    }
    if t3 < 0 {
      return fmt.Errorf("ReadBed(): invalid read depth `%s' (line %d)", fields[3][k+1:], i)
    }
    t4, err := strconv.ParseFloat(fields[4], 64); if err != nil {
      return err
    }
    if t4 < 0.0 || t4 > 1.0 {
      return fmt.Errorf("ReadBed(): invalid methylation fraction `%s' (line %d)", fields[4], i)
    }
    // check sort order
    if fields[0] != prevName {
      if seen[fields[0]] {
        return fmt.Errorf("ReadBed(): records not sorted (line %d)", i)
      }
      seen[fields[0]] = true
    } else {
      if int(t1) < prevFrom {
        return fmt.Errorf("ReadBed(): records not sorted (line %d)", i)
      }
    }
    prevName = fields[0]
    prevFrom = int(t1)

    m := float64(int(t4*float64(t3)))

    seqnames = append(seqnames, fields[0])
    from     = append(from,     int(t1))
    to       = append(to,       int(t2))
    meth     = append(meth,     m)
    unmeth   = append(unmeth,   float64(t3)-m)
  }
  *sites = NewMethSites(seqnames, from, to, meth, unmeth)

  return nil
}

func (sites *MethSites) ImportBed(filename string) error {
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
  if err := sites.ReadBed(r); err != nil {
    return fmt.Errorf("ImportBed(): reading file `%s' failed: %v", filename, err)
  }
  return nil
}

/* -------------------------------------------------------------------------- */

// Write methylation counts as a six column bed file.
func (sites MethSites) WriteBed(w io.Writer) error {
  for i := 0; i < sites.Length(); i++ {
    reads := sites.Reads(i)
    fraction := 0.0
    if reads > 0 {
      fraction = sites.Meth[i]/reads
    }
    if _, err := fmt.Fprintf(w, "%s\t%d\t%d\tCpG:%d\t%f\t%c\n",
      sites.Seqnames[i],
      sites.Ranges[i].From,
      sites.Ranges[i].To,
      int(reads),
      fraction, '+'); err != nil {
      return err
    }
  }
  return nil
}

func (sites MethSites) ExportBed(filename string, compress bool) error {
  var buffer bytes.Buffer

  w := bufio.NewWriter(&buffer)
  if err := sites.WriteBed(w); err != nil {
    return err
  }
  w.Flush()

  return writeFile(filename, &buffer, compress)
}
