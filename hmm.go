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
import "math"
import "os"

import . "github.com/MohammadDeen/methpipe/lib/logarithmetic"

import "github.com/pbenner/threadpool"

/* -------------------------------------------------------------------------- */

const (
  // foreground state, emits low methylation levels
  StateFg = iota
  // background state
  StateBg
)

type TransitionKind int

const (
  FgToBg TransitionKind = iota
  BgToFg
)

/* -------------------------------------------------------------------------- */

// Parameters of the two-state hidden Markov model. All probabilities are
// given in linear space. Each segment of sites is modeled as an independent
// chain that starts with distribution Start and terminates with state
// weights End.
type HMMParams struct {
  Start [2]float64
  Trans [2][2]float64
  End   [2]float64
  Emit  [2]BetaBinomial
}

// Initial parameters for a given mean read coverage. The foreground state
// starts at methylation level 0.33 and the background state at 0.67, with
// pseudo-counts that sum to the mean coverage.
func DefaultHMMParams(meanCoverage float64) HMMParams {
  params := HMMParams{}
  params.Start = [2]float64{0.5, 0.5}
  params.Trans = [2][2]float64{{0.75, 0.25}, {0.25, 0.75}}
  params.End   = [2]float64{1e-10, 1e-10}
  params.Emit[StateFg] = NewBetaBinomial(0.33*meanCoverage, 0.67*meanCoverage)
  params.Emit[StateBg] = NewBetaBinomial(0.67*meanCoverage, 0.33*meanCoverage)
  return params
}

func (params HMMParams) String() string {
  var buffer bytes.Buffer

  fmt.Fprintf(&buffer, "start       : %e %e\n",
    params.Start[StateFg], params.Start[StateBg])
  fmt.Fprintf(&buffer, "transitions : %e %e / %e %e\n",
    params.Trans[StateFg][StateFg], params.Trans[StateFg][StateBg],
    params.Trans[StateBg][StateFg], params.Trans[StateBg][StateBg])
  fmt.Fprintf(&buffer, "foreground  : alpha=%f beta=%f\n",
    params.Emit[StateFg].Alpha, params.Emit[StateFg].Beta)
  fmt.Fprintf(&buffer, "background  : alpha=%f beta=%f",
    params.Emit[StateBg].Alpha, params.Emit[StateBg].Beta)

  return buffer.String()
}

/* -------------------------------------------------------------------------- */

// Two-state hidden Markov model with beta-binomial emissions. MinProb is the
// lower bound on start and transition probabilities during re-estimation,
// Tolerance the relative log-likelihood change at which training stops and
// MaxIterations an upper bound on the number of Baum-Welch iterations.
// Decoding operations run segments in parallel on Threads threads.
type TwoStateHMM struct {
  MinProb       float64
  Tolerance     float64
  MaxIterations int
  Threads       int
  Verbose       bool
}

/* baum-welch training
 * -------------------------------------------------------------------------- */

// Estimate model parameters with the Baum-Welch algorithm, starting at the
// given parameters. The sites are not modified and the resulting parameters
// are returned together with the number of iterations used. Training stops
// when the relative change of the log-likelihood falls below Tolerance or
// after MaxIterations iterations, whichever comes first.
func (obj TwoStateHMM) BaumWelchTraining(sites MethSites, segments []Segment, params HMMParams) (HMMParams, int, error) {
  if err := checkSegments(sites, segments); err != nil {
    return params, 0, err
  }
  if sites.Length() == 0 {
    return params, 0, nil
  }
  la, lb := emissionStatistics(sites)

  llPrev := math.Inf(-1)

  for iter := 1; iter <= obj.MaxIterations; iter++ {
    newParams, ll := obj.baumWelchStep(sites, segments, params, la, lb)
    params = newParams
    if obj.Verbose {
      fmt.Fprintf(os.Stderr, "Baum-Welch iteration %2d: log-likelihood %f\n", iter, ll)
    }
    if math.Abs((ll - llPrev)/ll) < obj.Tolerance {
      return params, iter, nil
    }
    llPrev = ll
  }
  if obj.Verbose {
    fmt.Fprintf(os.Stderr, "Baum-Welch did not converge after %d iterations\n", obj.MaxIterations)
  }
  return params, obj.MaxIterations, nil
}

// Single Baum-Welch iteration over all segments. Returns the updated
// parameters and the log-likelihood under the current parameters.
func (obj TwoStateHMM) baumWelchStep(sites MethSites, segments []Segment, params HMMParams, la, lb []float64) (HMMParams, float64) {
  n := sites.Length()

  post    := make([]float64, n)
  startFg := 0.0
  startBg := 0.0
  trans   := [2][2]float64{}
  loglik  := 0.0

  lStart, lTrans, lEnd := logParams(params)

  for _, segment := range segments {
    if segment.Length() == 0 {
      continue
    }
    e := emissions(sites, segment, params)
    f, b, total := forwardBackward(e, lStart, lTrans, lEnd)
    loglik += total

    p := posteriorAt(f, b, total, 0)
    startFg += p[StateFg]
    startBg += p[StateBg]

    for t := 1; t < segment.Length(); t++ {
      for j := 0; j < 2; j++ {
        for k := 0; k < 2; k++ {
          trans[j][k] += math.Exp(f[t-1][j] + lTrans[j][k] + e[t][k] + b[t][k] - total)
        }
      }
    }
    for t := 0; t < segment.Length(); t++ {
      post[segment.From+t] = posteriorAt(f, b, total, t)[StateFg]
    }
  }
  result := params

  if z := startFg + startBg; z > 0 {
    result.Start[StateFg], result.Start[StateBg] =
      normalized2(startFg/z, startBg/z, obj.MinProb)
  }
  for j := 0; j < 2; j++ {
    if z := trans[j][StateFg] + trans[j][StateBg]; z > 0 {
      result.Trans[j][StateFg], result.Trans[j][StateBg] =
        normalized2(trans[j][StateFg]/z, trans[j][StateBg]/z, obj.MinProb)
    }
  }
  gammaBg := make([]float64, n)
  for i := 0; i < n; i++ {
    gammaBg[i] = 1.0 - post[i]
  }
  result.Emit[StateFg].Fit(la, lb, post,    obj.Tolerance)
  result.Emit[StateBg].Fit(la, lb, gammaBg, obj.Tolerance)

  return result, loglik
}

/* decoding
 * -------------------------------------------------------------------------- */

// Compute for every site the label with maximal posterior probability. The
// second return value gives the posterior probability of the foreground
// state, which the labeling thresholds at 0.5.
func (obj TwoStateHMM) PosteriorDecoding(sites MethSites, segments []Segment, params HMMParams) ([]bool, []float64, error) {
  if err := checkSegments(sites, segments); err != nil {
    return nil, nil, err
  }
  n := sites.Length()

  classes := make([]bool,    n)
  scores  := make([]float64, n)

  lStart, lTrans, lEnd := logParams(params)

  threads := iMax(obj.Threads, 1)
  pool    := threadpool.New(threads, 100*threads)

  if err := pool.RangeJob(0, len(segments), func(i int, pool threadpool.ThreadPool, erf func() error) error {
    segment := segments[i]
    if segment.Length() == 0 {
      return nil
    }
    e := emissions(sites, segment, params)
    f, b, total := forwardBackward(e, lStart, lTrans, lEnd)
    for t := 0; t < segment.Length(); t++ {
      p := posteriorAt(f, b, total, t)[StateFg]
      scores [segment.From+t] = p
      classes[segment.From+t] = p > 0.5
    }
    return nil
  }); err != nil {
    return nil, nil, err
  }
  return classes, scores, nil
}

// Compute the jointly most probable state sequence.
func (obj TwoStateHMM) ViterbiDecoding(sites MethSites, segments []Segment, params HMMParams) ([]bool, error) {
  if err := checkSegments(sites, segments); err != nil {
    return nil, err
  }
  n := sites.Length()

  classes := make([]bool, n)

  lStart, lTrans, lEnd := logParams(params)

  threads := iMax(obj.Threads, 1)
  pool    := threadpool.New(threads, 100*threads)

  if err := pool.RangeJob(0, len(segments), func(i int, pool threadpool.ThreadPool, erf func() error) error {
    segment := segments[i]
    if segment.Length() == 0 {
      return nil
    }
    e := emissions(sites, segment, params)
    path := viterbiPath(e, lStart, lTrans, lEnd)
    for t := 0; t < segment.Length(); t++ {
      classes[segment.From+t] = path[t] == StateFg
    }
    return nil
  }); err != nil {
    return nil, err
  }
  return classes, nil
}

// Compute for every site the posterior probability of the foreground state
// if class is true and of the background state otherwise.
func (obj TwoStateHMM) PosteriorScores(sites MethSites, segments []Segment, params HMMParams, class bool) ([]float64, error) {
  if err := checkSegments(sites, segments); err != nil {
    return nil, err
  }
  n := sites.Length()

  state := StateBg
  if class {
    state = StateFg
  }
  scores := make([]float64, n)

  lStart, lTrans, lEnd := logParams(params)

  threads := iMax(obj.Threads, 1)
  pool    := threadpool.New(threads, 100*threads)

  if err := pool.RangeJob(0, len(segments), func(i int, pool threadpool.ThreadPool, erf func() error) error {
    segment := segments[i]
    if segment.Length() == 0 {
      return nil
    }
    e := emissions(sites, segment, params)
    f, b, total := forwardBackward(e, lStart, lTrans, lEnd)
    for t := 0; t < segment.Length(); t++ {
      scores[segment.From+t] = posteriorAt(f, b, total, t)[state]
    }
    return nil
  }); err != nil {
    return nil, err
  }
  return scores, nil
}

// Compute for every site the posterior probability that the given state
// transition occurred between the previous site and this site. The first
// site of each segment has no incoming transition and is assigned zero.
func (obj TwoStateHMM) TransitionPosteriors(sites MethSites, segments []Segment, params HMMParams, kind TransitionKind) ([]float64, error) {
  if err := checkSegments(sites, segments); err != nil {
    return nil, err
  }
  var j, k int

  switch kind {
  case FgToBg: j, k = StateFg, StateBg
  case BgToFg: j, k = StateBg, StateFg
  default:
    return nil, fmt.Errorf("invalid transition kind `%d'", kind)
  }
  n := sites.Length()

  scores := make([]float64, n)

  lStart, lTrans, lEnd := logParams(params)

  threads := iMax(obj.Threads, 1)
  pool    := threadpool.New(threads, 100*threads)

  if err := pool.RangeJob(0, len(segments), func(i int, pool threadpool.ThreadPool, erf func() error) error {
    segment := segments[i]
    if segment.Length() == 0 {
      return nil
    }
    e := emissions(sites, segment, params)
    f, b, total := forwardBackward(e, lStart, lTrans, lEnd)
    scores[segment.From] = 0.0
    for t := 1; t < segment.Length(); t++ {
      scores[segment.From+t] = math.Exp(f[t-1][j] + lTrans[j][k] + e[t][k] + b[t][k] - total)
    }
    return nil
  }); err != nil {
    return nil, err
  }
  return scores, nil
}

/* forward-backward recursions
 * -------------------------------------------------------------------------- */

func logParams(params HMMParams) ([2]float64, [2][2]float64, [2]float64) {
  lStart := [2]float64{
    math.Log(params.Start[0]), math.Log(params.Start[1])}
  lTrans := [2][2]float64{
    {math.Log(params.Trans[0][0]), math.Log(params.Trans[0][1])},
    {math.Log(params.Trans[1][0]), math.Log(params.Trans[1][1])}}
  lEnd := [2]float64{
    math.Log(params.End[0]), math.Log(params.End[1])}
  return lStart, lTrans, lEnd
}

// Log emission probabilities for all sites of a segment.
func emissions(sites MethSites, segment Segment, params HMMParams) [][2]float64 {
  e := make([][2]float64, segment.Length())
  for t := 0; t < segment.Length(); t++ {
    i := segment.From + t
    e[t][StateFg] = params.Emit[StateFg].LogPmf(sites.Meth[i], sites.Unmeth[i])
    e[t][StateBg] = params.Emit[StateBg].LogPmf(sites.Meth[i], sites.Unmeth[i])
  }
  return e
}

// Forward and backward variables in log space, together with the total
// log-likelihood of the segment.
func forwardBackward(e [][2]float64, lStart [2]float64, lTrans [2][2]float64, lEnd [2]float64) ([][2]float64, [][2]float64, float64) {
  m := len(e)

  f := make([][2]float64, m)
  b := make([][2]float64, m)

  f[0][0] = lStart[0] + e[0][0]
  f[0][1] = lStart[1] + e[0][1]
  for t := 1; t < m; t++ {
    for k := 0; k < 2; k++ {
      f[t][k] = LogAdd(f[t-1][0] + lTrans[0][k], f[t-1][1] + lTrans[1][k]) + e[t][k]
    }
  }
  total := LogAdd(f[m-1][0] + lEnd[0], f[m-1][1] + lEnd[1])

  b[m-1][0] = lEnd[0]
  b[m-1][1] = lEnd[1]
  for t := m - 2; t >= 0; t-- {
    for j := 0; j < 2; j++ {
      b[t][j] = LogAdd(
        lTrans[j][0] + e[t+1][0] + b[t+1][0],
        lTrans[j][1] + e[t+1][1] + b[t+1][1])
    }
  }
  return f, b, total
}

// Normalized posterior state distribution at position t.
func posteriorAt(f, b [][2]float64, total float64, t int) [2]float64 {
  p := [2]float64{
    math.Exp(f[t][0] + b[t][0] - total),
    math.Exp(f[t][1] + b[t][1] - total)}
  if z := p[0] + p[1]; z > 0 {
    p[0] /= z
    p[1] /= z
  }
  return p
}

func viterbiPath(e [][2]float64, lStart [2]float64, lTrans [2][2]float64, lEnd [2]float64) []int {
  m := len(e)

  v   := make([][2]float64, m)
  ptr := make([][2]int,     m)

  v[0][0] = lStart[0] + e[0][0]
  v[0][1] = lStart[1] + e[0][1]
  for t := 1; t < m; t++ {
    for k := 0; k < 2; k++ {
      if v[t-1][0] + lTrans[0][k] >= v[t-1][1] + lTrans[1][k] {
        v[t][k] = v[t-1][0] + lTrans[0][k] + e[t][k]
        ptr[t][k] = 0
      } else {
        v[t][k] = v[t-1][1] + lTrans[1][k] + e[t][k]
        ptr[t][k] = 1
      }
    }
  }
  path  := make([]int, m)
  state := 0
  if v[m-1][1] + lEnd[1] > v[m-1][0] + lEnd[0] {
    state = 1
  }
  for t := m - 1; t > 0; t-- {
    path[t] = state
    state   = ptr[t][state]
  }
  path[0] = state

  return path
}

/* -------------------------------------------------------------------------- */

// Smoothed log-proportions of methylated and unmethylated reads, used as
// sufficient statistics for re-estimating the emission parameters. The
// proportions are clamped away from zero and one so that their logarithms
// stay finite.
func emissionStatistics(sites MethSites) ([]float64, []float64) {
  const eps = 1e-2

  n  := sites.Length()
  la := make([]float64, n)
  lb := make([]float64, n)
  for i := 0; i < n; i++ {
    p := 0.5
    if reads := sites.Reads(i); reads > 0 {
      p = sites.Meth[i]/reads
    }
    p = math.Min(math.Max(p, eps), 1.0-eps)
    la[i] = math.Log(p)
    lb[i] = math.Log(1.0 - p)
  }
  return la, lb
}

// Apply the given lower bound to a two-element probability distribution
// and renormalize.
func normalized2(a, b, floor float64) (float64, float64) {
  a = math.Max(a, floor)
  b = math.Max(b, floor)
  z := a + b
  return a/z, b/z
}
