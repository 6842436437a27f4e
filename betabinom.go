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

import "gonum.org/v1/gonum/mathext"
import "gonum.org/v1/gonum/stat/combin"

/* -------------------------------------------------------------------------- */

// Beta-binomial distribution over the number of methylated reads at a site.
// The read depth enters as the number of trials, which allows sites with
// different coverage to share one emission distribution.
type BetaBinomial struct {
  Alpha float64
  Beta  float64
}

/* constructors
 * -------------------------------------------------------------------------- */

func NewBetaBinomial(alpha, beta float64) BetaBinomial {
  if alpha <= 0.0 || beta <= 0.0 {
    panic("NewBetaBinomial(): shape parameters must be positive!")
  }
  return BetaBinomial{alpha, beta}
}

/* -------------------------------------------------------------------------- */

// Mean of the underlying beta distribution.
func (dist BetaBinomial) Mean() float64 {
  return dist.Alpha/(dist.Alpha + dist.Beta)
}

// Log probability of observing meth methylated and unmeth unmethylated
// reads at a single site.
func (dist BetaBinomial) LogPmf(meth, unmeth float64) float64 {
  return combin.LogGeneralizedBinomial(meth+unmeth, meth) +
    mathext.Lbeta(meth + dist.Alpha, unmeth + dist.Beta) -
    mathext.Lbeta(dist.Alpha, dist.Beta)
}

/* maximum likelihood estimation
 * -------------------------------------------------------------------------- */

// Estimate shape parameters from weighted observations, where la and lb
// contain the log methylated and log unmethylated proportions of each site
// and gamma the weight of each observation. The parameters are obtained
// with a fixed point iteration on the digamma function. If no probability
// mass is assigned to the distribution, the parameters are left unchanged.
func (dist *BetaBinomial) Fit(la, lb, gamma []float64, tolerance float64) {
  if len(la) != len(lb) || len(la) != len(gamma) {
    panic("Fit(): invalid arguments!")
  }
  sum := 0.0
  sa  := 0.0
  sb  := 0.0
  for i := 0; i < len(gamma); i++ {
    sum += gamma[i]
    sa  += gamma[i]*la[i]
    sb  += gamma[i]*lb[i]
  }
  if sum == 0.0 {
    return
  }
  sa /= sum
  sb /= sum

  alpha := 0.01
  beta  := 0.01
  prevAlpha := 0.0
  prevBeta  := 0.0
  // the iteration is capped since the maximum likelihood estimate diverges
  // if all observations coincide
  for iter := 0; iter < 1000; iter++ {
    if movement(alpha, prevAlpha) <= tolerance && movement(beta, prevBeta) <= tolerance {
      break
    }
    prevAlpha = alpha
    prevBeta  = beta
    alpha = invDigamma(tolerance, mathext.Digamma(prevAlpha+prevBeta) + sa)
    beta  = invDigamma(tolerance, mathext.Digamma(prevAlpha+prevBeta) + sb)
  }
  dist.Alpha = alpha
  dist.Beta  = beta
}

/* -------------------------------------------------------------------------- */

func movement(curr, prev float64) float64 {
  return math.Abs(curr - prev) / math.Max(math.Abs(curr), math.Abs(prev))
}

// Invert the digamma function with a bisection type search starting
// at exp(x), which is a lower bound of the result.
func invDigamma(tolerance, x float64) float64 {
  l := 1.0
  y := math.Exp(x)
  for l > tolerance {
    if x >= mathext.Digamma(y) {
      y += l
    } else {
      y -= l
    }
    l /= 2.0
  }
  return y
}
