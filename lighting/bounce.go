// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"context"

	"github.com/chewxy/math32"
	"golang.org/x/sync/errgroup"

	"ufo2map/math/vec"
)

// gatherBounce returns the light reflected onto patch r by every other
// patch it can see.
func (c *Compiler) gatherBounce(r int) vec.Vec3 {
	ps := c.patches.Patches
	recv := &ps[r]
	var total vec.Vec3
	for e := range ps {
		if e == r {
			continue
		}
		emit := &ps[e]
		if emit.SampleLight.Max() <= 0 {
			continue
		}
		delta, dist := vec.Sub(emit.Origin, recv.Origin).Normalize()
		if dist == 0 {
			continue
		}
		cosR := vec.Dot(delta, recv.Normal)
		if cosR <= 0 {
			continue
		}
		cosE := -vec.Dot(delta, emit.Normal)
		if cosE <= 0 {
			continue
		}
		if c.tree.TestLine(recv.Origin, emit.Origin) {
			continue
		}
		ff := cosR * cosE * emit.Area / (math32.Pi*dist*dist + emit.Area)
		total = vec.MA(total, ff*c.cfg.Reflectivity, emit.SampleLight)
	}
	return total
}

// BouncePatches sets the Bounced light of every patch. It must only run
// after all faces were sampled. Every worker writes to its own patches and
// reads the sample light of the others.
func (c *Compiler) BouncePatches(ctx context.Context) error {
	if c.cfg.Bounce == 0 {
		return nil
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Threads)
	for i := range c.patches.Patches {
		if ctx.Err() != nil {
			break
		}
		i := i // per-iteration copy (go 1.21 loop semantics)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.patches.Patches[i].Bounced = c.gatherBounce(i)
			return nil
		})
	}
	return g.Wait()
}
