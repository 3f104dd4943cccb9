// SPDX-License-Identifier: GPL-2.0-or-later

package cvar

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"ufo2map/conlog"
)

var (
	cvarArray  []*Cvar
	cvarByName = make(map[string]*Cvar)
)

type flag uint64

const (
	NONE flag = 0
	// shown in the compile summary
	NOTIFY flag = 1 << 1
	ROM    flag = 1 << 6
)

type CallbackFunc func(cv *Cvar)

type Cvar struct {
	notify   bool
	rom      bool
	user     bool
	callback CallbackFunc
	name     string
	// stringValue is the truth, value the derived one
	stringValue  string
	value        float32
	defaultValue string
}

func All() []*Cvar {
	return cvarArray
}

func (cv *Cvar) Notify() bool {
	return cv.notify
}

func (cv *Cvar) UserDefined() bool {
	return cv.user
}

func (cv *Cvar) SetCallback(cb CallbackFunc) {
	cv.callback = cb
}

func (cv *Cvar) SetByString(s string) {
	if cv.rom {
		return
	}
	cv.stringValue = s
	pf, _ := strconv.ParseFloat(strings.TrimSpace(cv.stringValue), 32)
	cv.value = float32(pf)
	if cv.callback != nil {
		cv.callback(cv)
	}
}

func (cv *Cvar) Reset() {
	cv.SetByString(cv.defaultValue)
}

func (cv *Cvar) String() string {
	return cv.stringValue
}

func (cv *Cvar) Default() string {
	return cv.defaultValue
}

func (cv *Cvar) Name() string {
	return cv.name
}

func (cv *Cvar) Value() float32 {
	return cv.value
}

func (cv *Cvar) Int() int {
	return int(cv.value)
}

func (cv *Cvar) SetValue(value float32) {
	if float32(int(value)) == value {
		v := strconv.FormatInt(int64(value), 10)
		cv.SetByString(v)
	} else {
		v := strconv.FormatFloat(float64(value), 'f', -1, 32)
		cv.SetByString(v)
	}
}

func (cv *Cvar) Bool() bool {
	return cv.stringValue != "0" && cv.stringValue != ""
}

// Floats parses a whitespace separated list of numbers, like "0.1 0.1 0.2".
// Missing trailing values repeat the last one given.
func (cv *Cvar) Floats(n int) []float32 {
	r := make([]float32, n)
	fields := strings.Fields(cv.stringValue)
	var last float32
	for i := 0; i < n; i++ {
		if i < len(fields) {
			f, err := strconv.ParseFloat(fields[i], 32)
			if err != nil {
				conlog.Warnf("%s: bad number %q\n", cv.name, fields[i])
				f = 0
			}
			last = float32(f)
		}
		r[i] = last
	}
	return r
}

func Get(name string) (*Cvar, bool) {
	cv, ok := cvarByName[name]
	return cv, ok
}

func create(name, value string) *Cvar {
	cv := &Cvar{name: name, defaultValue: value}
	cv.SetByString(value)
	cvarArray = append(cvarArray, cv)
	cvarByName[name] = cv
	return cv
}

func Register(name, value string, flags flag) (*Cvar, error) {
	if _, ok := cvarByName[name]; ok {
		return nil, fmt.Errorf("Can't register variable %s, already defined\n", name)
	}

	cv := create(name, value)

	if flags&NOTIFY != 0 {
		cv.notify = true
	}
	if flags&ROM != 0 {
		cv.rom = true
	}

	return cv, nil
}

func MustRegister(n, v string, flag flag) *Cvar {
	cv, err := Register(n, v, flag)
	if err != nil {
		log.Panic(n)
	}
	return cv
}

// Set changes an existing cvar or creates a user defined one.
func Set(name, value string) {
	if cv, ok := cvarByName[name]; ok {
		cv.SetByString(value)
		return
	}
	cv := create(name, value)
	cv.user = true
}

func ResetAll() {
	for _, cv := range All() {
		cv.Reset()
	}
}

// PrintChanged lists every cvar with the NOTIFY flag that differs from its
// default value.
func PrintChanged() {
	var changed []*Cvar
	for _, cv := range All() {
		if cv.Notify() && cv.String() != cv.defaultValue {
			changed = append(changed, cv)
		}
	}
	sort.Slice(changed, func(i, j int) bool {
		return changed[i].name < changed[j].name
	})
	for _, cv := range changed {
		conlog.Printf("%s \"%s\" (default \"%s\")\n", cv.Name(), cv.String(), cv.defaultValue)
	}
}
