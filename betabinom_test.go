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

import   "math"
import   "testing"

import   "gonum.org/v1/gonum/mathext"

/* -------------------------------------------------------------------------- */

func TestBetaBinomial1(t *testing.T) {

  lbeta := func(a, b float64) float64 {
    r1, _ := math.Lgamma(a)
    r2, _ := math.Lgamma(b)
    r3, _ := math.Lgamma(a+b)
    return r1 + r2 - r3
  }
  lchoose := func(n, k float64) float64 {
    r1, _ := math.Lgamma(n+1.0)
    r2, _ := math.Lgamma(k+1.0)
    r3, _ := math.Lgamma(n-k+1.0)
    return r1 - r2 - r3
  }
  dist := NewBetaBinomial(2.0, 3.0)

  r1 := dist.LogPmf(4.0, 6.0)
  r2 := lchoose(10.0, 4.0) + lbeta(4.0+2.0, 6.0+3.0) - lbeta(2.0, 3.0)

  if math.Abs(r1 - r2) > 1e-10 {
    t.Error("TestBetaBinomial1 failed!")
  }
  if math.Abs(dist.Mean() - 0.4) > 1e-12 {
    t.Error("TestBetaBinomial1 failed!")
  }
}

func TestBetaBinomial2(t *testing.T) {

  dist := NewBetaBinomial(1.5, 2.5)

  // the pmf over all outcomes at fixed read depth must sum to one
  sum := 0.0
  for k := 0; k <= 5; k++ {
    sum += math.Exp(dist.LogPmf(float64(k), float64(5-k)))
  }
  if math.Abs(sum - 1.0) > 1e-10 {
    t.Error("TestBetaBinomial2 failed!")
  }
}

func TestBetaBinomial3(t *testing.T) {

  for _, y := range []float64{0.1, 0.5, 1.0, 3.3, 10.0} {
    x := mathext.Digamma(y)
    if math.Abs(invDigamma(1e-12, x) - y) > 1e-6 {
      t.Error("TestBetaBinomial3 failed!")
    }
  }
}

func TestBetaBinomial4(t *testing.T) {

  // observations at methylation levels 0.1, 0.2 and 0.3
  la    := []float64{}
  lb    := []float64{}
  gamma := []float64{}
  for i := 0; i < 30; i++ {
    p := []float64{0.1, 0.2, 0.3}[i % 3]
    la    = append(la,    math.Log(p))
    lb    = append(lb,    math.Log(1.0 - p))
    gamma = append(gamma, 1.0)
  }
  dist := NewBetaBinomial(1.0, 1.0)
  dist.Fit(la, lb, gamma, 1e-8)

  if dist.Alpha <= 0.0 || dist.Beta <= 0.0 {
    t.Error("TestBetaBinomial4 failed!")
  }
  if math.Abs(dist.Mean() - 0.2) > 0.05 {
    t.Error("TestBetaBinomial4 failed!")
  }
}

func TestBetaBinomial5(t *testing.T) {

  // zero total weight leaves the parameters unchanged
  dist := NewBetaBinomial(2.0, 3.0)
  dist.Fit(
    []float64{math.Log(0.2)},
    []float64{math.Log(0.8)},
    []float64{0.0}, 1e-8)

  if dist.Alpha != 2.0 || dist.Beta != 3.0 {
    t.Error("TestBetaBinomial5 failed!")
  }
}
