// SPDX-License-Identifier: GPL-2.0-or-later

package cvars

import (
	"runtime"
	"strconv"

	"ufo2map/conlog"
	"ufo2map/cvar"
	"ufo2map/lighting"
	"ufo2map/math/vec"
)

var (
	Ambient      *cvar.Cvar
	Bounce       *cvar.Cvar
	DirectScale  *cvar.Cvar
	EntityScale  *cvar.Cvar
	ExtraSamples *cvar.Cvar
	LightQuant   *cvar.Cvar
	LightScale   *cvar.Cvar
	MaxLight     *cvar.Cvar
	Reflectivity *cvar.Cvar
	Threads      *cvar.Cvar
	Verbose      *cvar.Cvar
)

func init() {
	Ambient = cvar.MustRegister("ambient", "0 0 0", cvar.NOTIFY)
	Bounce = cvar.MustRegister("bounce", "1", cvar.NOTIFY)
	DirectScale = cvar.MustRegister("direct", "0.4", cvar.NOTIFY)
	EntityScale = cvar.MustRegister("entity", "1", cvar.NOTIFY)
	ExtraSamples = cvar.MustRegister("extra", "0", cvar.NOTIFY)
	LightQuant = cvar.MustRegister("quant", "4", cvar.NOTIFY)
	LightScale = cvar.MustRegister("scale", "1", cvar.NOTIFY)
	MaxLight = cvar.MustRegister("maxlight", "255", cvar.NOTIFY)
	Reflectivity = cvar.MustRegister("reflect", "0.5", cvar.NOTIFY)
	Threads = cvar.MustRegister("threads", strconv.Itoa(runtime.NumCPU()), cvar.NONE)
	Verbose = cvar.MustRegister("verbose", "0", cvar.NONE)

	Verbose.SetCallback(func(cv *cvar.Cvar) {
		conlog.SetVerbose(cv.Bool())
	})
}

// LightConfig returns the current lighting settings.
func LightConfig() lighting.Config {
	a := Ambient.Floats(3)
	return lighting.Config{
		Ambient:      vec.Vec3{a[0], a[1], a[2]},
		LightScale:   LightScale.Value(),
		MaxLight:     MaxLight.Value(),
		DirectScale:  DirectScale.Value(),
		EntityScale:  EntityScale.Value(),
		Bounce:       Bounce.Int(),
		LightQuant:   LightQuant.Int(),
		ExtraSamples: ExtraSamples.Bool(),
		Reflectivity: Reflectivity.Value(),
		Threads:      Threads.Int(),
	}
}
