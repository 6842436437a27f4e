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

import "golang.org/x/exp/rand"

import "gonum.org/v1/gonum/stat/distuv"

/* -------------------------------------------------------------------------- */

// Parameters for generating random methylation data. Sites are placed with
// an average spacing of MeanSpacing base pairs and with probability
// DesertRate the distance to the next site is increased by DesertGap base
// pairs. Read depths are Poisson distributed with mean MeanCoverage, which
// includes sites without any reads.
type RandomSitesConfig struct {
  Sites        int
  MeanCoverage float64
  MeanSpacing  int
  DesertRate   float64
  DesertGap    int
  Seed         uint64
}

/* -------------------------------------------------------------------------- */

// Generate random methylation counts by sampling from the hidden Markov
// model given by params. The state chain restarts at every desert and at
// every chromosome boundary. Sites are placed on the chromosomes of the
// given genome in order; if the genome is exhausted before the requested
// number of sites is reached, fewer sites are returned. The second return
// value records for every site whether it was generated from the
// foreground state.
func RandomMethSites(config RandomSitesConfig, params HMMParams, genome Genome) (MethSites, []bool) {
  if genome.Length() == 0 {
    panic("RandomMethSites(): empty genome!")
  }
  src := rand.NewSource(config.Seed)
  rng := rand.New(src)

  poisson := distuv.Poisson{Lambda: config.MeanCoverage, Src: src}
  level   := [2]distuv.Beta{
    {Alpha: params.Emit[StateFg].Alpha, Beta: params.Emit[StateFg].Beta, Src: src},
    {Alpha: params.Emit[StateBg].Alpha, Beta: params.Emit[StateBg].Beta, Src: src}}

  seqnames := []string{}
  from     := []int{}
  to       := []int{}
  meth     := []float64{}
  unmeth   := []float64{}
  labels   := []bool{}

  drawStart := func() int {
    if rng.Float64() < params.Start[StateFg] {
      return StateFg
    }
    return StateBg
  }
  chrom := 0
  pos   := 0
  state := drawStart()

  for i := 0; i < config.Sites; i++ {
    // gaps are uniform on [1, 2*MeanSpacing-1] with mean MeanSpacing
    gap := 1 + rng.Intn(iMax(2*config.MeanSpacing - 1, 1))
    if rng.Float64() < config.DesertRate {
      gap  += config.DesertGap
      state = drawStart()
    }
    pos += gap
    // move to the next chromosome if this one is exhausted
    for pos+1 > genome.Lengths[chrom] {
      chrom += 1
      pos    = gap
      state  = drawStart()
      if chrom >= genome.Length() {
        return NewMethSites(seqnames, from, to, meth, unmeth), labels
      }
    }
    depth    := poisson.Rand()
    fraction := level[state].Rand()
    m := 0.0
    if depth >= 1 {
      m = distuv.Binomial{N: depth, P: fraction, Src: src}.Rand()
    }
    seqnames = append(seqnames, genome.Seqnames[chrom])
    from     = append(from,     pos)
    to       = append(to,       pos+1)
    meth     = append(meth,     m)
    unmeth   = append(unmeth,   depth-m)
    labels   = append(labels,   state == StateFg)

    // draw the next state
    if rng.Float64() < params.Trans[state][StateFg] {
      state = StateFg
    } else {
      state = StateBg
    }
  }
  return NewMethSites(seqnames, from, to, meth, unmeth), labels
}
