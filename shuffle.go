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

import "math/rand"

/* -------------------------------------------------------------------------- */

// Randomly permute the methylation counts within each segment. Site
// positions are left in place, only the count pairs are exchanged, so that
// the segment structure of the result is identical to that of the input.
// Counts never cross segment boundaries. The sites are not modified and a
// shuffled clone is returned.
func ShuffleSites(sites MethSites, segments []Segment, rng *rand.Rand) MethSites {
  result := sites.Clone()

  for _, segment := range segments {
    rng.Shuffle(segment.Length(), func(i, j int) {
      i += segment.From
      j += segment.From
      result.Meth  [i], result.Meth  [j] = result.Meth  [j], result.Meth  [i]
      result.Unmeth[i], result.Unmeth[j] = result.Unmeth[j], result.Unmeth[i]
    })
  }
  return result
}
