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
import "fmt"
import "io"

/* -------------------------------------------------------------------------- */

// Write one value per site in bedGraph format, e.g. for exporting posterior
// score tracks.
func (sites MethSites) WriteBedGraph(w io.Writer, values []float64) error {
  if len(values) != sites.Length() {
    return fmt.Errorf("WriteBedGraph(): values column has invalid length")
  }
  for i := 0; i < sites.Length(); i++ {
    if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%f\n",
      sites.Seqnames[i],
      sites.Ranges[i].From,
      sites.Ranges[i].To,
      values[i]); err != nil {
      return err
    }
  }
  return nil
}

func (sites MethSites) ExportBedGraph(filename string, values []float64, compress bool) error {
  var buffer bytes.Buffer

  w := bufio.NewWriter(&buffer)
  if err := sites.WriteBedGraph(w, values); err != nil {
    return err
  }
  w.Flush()

  return writeFile(filename, &buffer, compress)
}
