// SPDX-License-Identifier: GPL-2.0-or-later

// Package commandline maps the light compiler options onto cvars.
package commandline

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"ufo2map/bsp"
	"ufo2map/cvar"
	"ufo2map/cvars"
	"ufo2map/lighting"
)

// cvarFlag sets the cvar of the same name.
type cvarFlag struct {
	name string
}

func (c cvarFlag) Set(s string) error {
	if _, err := strconv.ParseFloat(s, 32); err != nil {
		return fmt.Errorf("%s: not a number: %q", c.name, s)
	}
	cvar.Set(c.name, s)
	return nil
}

func (c cvarFlag) String() string {
	if c.name == "" {
		return ""
	}
	cv, ok := cvar.Get(c.name)
	if !ok {
		return ""
	}
	return cv.Default()
}

// vectorFlag takes one to three numbers, "0.1 0.1 0.2" or "0.1,0.1,0.2".
type vectorFlag struct {
	cvarFlag
}

func (c vectorFlag) Set(s string) error {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	if len(fields) == 0 || len(fields) > 3 {
		return fmt.Errorf("%s: want 1 to 3 numbers, got %q", c.name, s)
	}
	for _, f := range fields {
		if _, err := strconv.ParseFloat(f, 32); err != nil {
			return fmt.Errorf("%s: not a number: %q", c.name, f)
		}
	}
	cvar.Set(c.name, strings.Join(fields, " "))
	return nil
}

type cvarBoolFlag struct {
	cvarFlag
}

func (c cvarBoolFlag) IsBoolFlag() bool {
	return true
}

func (c cvarBoolFlag) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if v {
		cvar.Set(c.name, "1")
	} else {
		cvar.Set(c.name, "0")
	}
	return nil
}

type boolInt struct {
	set bool
	num int
}

func (b *boolInt) IsBoolFlag() bool {
	// We can not support both "-flag" and "-flag 10"
	// This allows "-flag", and "-flag=10"
	// and also "-flag=true" and "-flag=false"
	// but not "-flag 10"
	return true
}

func (b *boolInt) Set(s string) error {
	v, err := strconv.ParseInt(s, 0, strconv.IntSize)
	if err != nil {
		v, err := strconv.ParseBool(s)
		b.set = v
		return err
	}
	b.set = true
	b.num = int(v)
	return nil
}

func (b *boolInt) String() string {
	return fmt.Sprintf("Set: %v, Num: %v", b.set, b.num)
}

// verboseFlag is "-v" for level 1 or "-v=N".
type verboseFlag struct {
	boolInt
}

func (v *verboseFlag) Set(s string) error {
	if err := v.boolInt.Set(s); err != nil {
		return err
	}
	switch {
	case !v.set:
		cvar.Set("verbose", "0")
	case v.num > 0:
		cvar.Set("verbose", strconv.Itoa(v.num))
	default:
		cvar.Set("verbose", "1")
	}
	return nil
}

func newFlagSet(out io.Writer) *flag.FlagSet {
	flags := flag.NewFlagSet("ufo2map", flag.ContinueOnError)
	flags.SetOutput(out)

	flags.Var(vectorFlag{cvarFlag{"ambient"}}, "ambient", "ambient light added to every sample, \"r g b\"")
	flags.Var(cvarFlag{"scale"}, "scale", "scale of the final light values")
	flags.Var(cvarFlag{"maxlight"}, "maxlight", "brightest value of a light channel")
	flags.Var(cvarFlag{"direct"}, "direct", "scale of surface lights")
	flags.Var(cvarFlag{"entity"}, "entity", "scale of light entities")
	flags.Var(cvarFlag{"bounce"}, "bounce", "number of light bounces, 0 disables radiosity")
	flags.Var(cvarFlag{"quant"}, "quant", "log2 of the texels per lightmap sample")
	flags.Var(cvarBoolFlag{cvarFlag{"extra"}}, "extra", "sample 5 points per lightmap sample")
	flags.Var(cvarFlag{"reflect"}, "reflect", "reflectivity of surfaces for the bounce")
	flags.Var(cvarFlag{"threads"}, "threads", "number of worker threads")
	flags.Var(&verboseFlag{}, "v", "verbose output")
	return flags
}

// Parse applies the options in args to the cvars and returns the
// remaining arguments.
func Parse(args []string, out io.Writer) ([]string, error) {
	flags := newFlagSet(out)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	return flags.Args(), nil
}

// Run applies the options in args, prints the settings that differ from
// their defaults and lights m with them. It returns the arguments left
// after the options.
func Run(ctx context.Context, m *bsp.Map, args []string, out io.Writer) ([]string, error) {
	rest, err := Parse(args, out)
	if err != nil {
		return nil, err
	}
	cvar.PrintChanged()
	if err := lighting.LightWorld(ctx, m, cvars.LightConfig()); err != nil {
		return nil, err
	}
	return rest, nil
}
