// SPDX-License-Identifier: GPL-2.0-or-later

package lighting

import (
	"runtime"

	"ufo2map/math/vec"
)

// Config holds the tunables of one lighting run.
type Config struct {
	// Ambient is added to every style of every sample
	Ambient vec.Vec3
	// LightScale scales the final sample values
	LightScale float32
	// MaxLight is the brightest value a channel may reach
	MaxLight float32
	// DirectScale scales surface light emitters
	DirectScale float32
	// EntityScale scales light entities
	EntityScale float32
	// Bounce is the number of radiosity bounces, 0 or 1
	Bounce int
	// LightQuant is log2 of the texels per lightmap sample
	LightQuant int
	// ExtraSamples enables 5 point super sampling
	ExtraSamples bool
	// Reflectivity of all surfaces for the bounce
	Reflectivity float32
	// Threads limits the number of workers per phase
	Threads int
}

func DefaultConfig() Config {
	return Config{
		LightScale:   1,
		MaxLight:     255,
		DirectScale:  0.4,
		EntityScale:  1,
		Bounce:       1,
		LightQuant:   4,
		Reflectivity: 0.5,
		Threads:      runtime.NumCPU(),
	}
}
