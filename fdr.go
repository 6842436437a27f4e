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

import "math"
import "sort"

/* -------------------------------------------------------------------------- */

// Compute a score cutoff from the scores of domains obtained on permuted
// data, such that the expected fraction of accepted null domains does not
// exceed fdr. The cutoff is the empirical (1-fdr) quantile of the null
// scores, moved up to the next strictly larger score if there are ties.
// For fdr <= 0 no score passes the resulting cutoff, for fdr > 1 every
// score does. If there are no null domains the cutoff is conservative,
// i.e. no score passes.
func PosteriorCutoff(domains Domains, fdr float64) float64 {
  if fdr <= 0.0 {
    return math.MaxFloat64
  }
  if fdr > 1.0 {
    return -math.MaxFloat64
  }
  n := domains.Length()
  if n == 0 {
    return math.MaxFloat64
  }
  scores := make([]float64, n)
  copy(scores, domains.Scores)
  sort.Float64s(scores)

  i := int(float64(n)*(1.0 - fdr))
  if i > n-1 {
    i = n-1
  }
  // move up to the next strictly larger score
  for j := i; j < n; j++ {
    if scores[j] > scores[i] {
      i = j
      break
    }
  }
  return scores[i]
}

/* -------------------------------------------------------------------------- */

// Keep all domains with a score greater than or equal to the cutoff.
func FilterDomains(domains Domains, cutoff float64) Domains {
  indices := []int{}
  for i := 0; i < domains.Length(); i++ {
    if domains.Scores[i] >= cutoff {
      indices = append(indices, i)
    }
  }
  return domains.Subset(indices)
}
