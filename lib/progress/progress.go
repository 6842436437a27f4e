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

package progress

/* -------------------------------------------------------------------------- */

import "bytes"
import "fmt"
import "os"

/* -------------------------------------------------------------------------- */

// Progress bar printed every K steps out of N. The output starts with an
// ANSI escape sequence that clears the current line, so that consecutive
// calls draw over each other.
type Progress struct {
  N, K, LineWidth int
}

/* -------------------------------------------------------------------------- */

func New(n, k int) Progress {
  progress := Progress{n, n/k, 40}
  if k > n {
    progress.K = 1
  }
  return progress
}

/* -------------------------------------------------------------------------- */

const __line_del__ = "\033[2K\r"

func (progress Progress) Exec(i int) string {
  var buffer bytes.Buffer

  p := float64(i)/float64(progress.N)
  if progress.N <= 0 {
    p = 1.0
  }
  fmt.Fprintf(&buffer, "%s|", __line_del__)

  k := int(p*float64(progress.LineWidth-2))
  for j := 1; j < progress.LineWidth-1; j++ {
    switch {
    case j <  k: fmt.Fprintf(&buffer, "=")
    case j == k: fmt.Fprintf(&buffer, ">")
    default    : fmt.Fprintf(&buffer, " ")
    }
  }
  fmt.Fprintf(&buffer, "| %6.2f%% (%d/%d)", p*100, i, progress.N)
  // add newline if finished
  if i >= progress.N {
    fmt.Fprintf(&buffer, "\n")
  }
  return buffer.String()
}

func (progress Progress) PrintStdout(i int) {
  if i == 0 || i == progress.N || (i % progress.K == 0) {
    fmt.Fprint(os.Stdout, progress.Exec(i))
  }
}

func (progress Progress) PrintStderr(i int) {
  if i == 0 || i == progress.N || (i % progress.K == 0) {
    fmt.Fprint(os.Stderr, progress.Exec(i))
  }
}
