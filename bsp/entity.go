// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"strconv"
	"strings"

	"ufo2map/math/vec"
)

type Entity struct {
	properties map[string]string
	src        []byte
}

func NewEntity(p []byte) *Entity {
	e := &Entity{properties: make(map[string]string), src: p}
	// parse the entity line by line
	lines := bytes.Split(p, []byte("\n"))
	for _, l := range lines {
		// look for something of the form
		// "key" "value"
		q := bytes.IndexByte(l, '"')
		if q == -1 {
			continue
		}
		r := l[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		key := string(r[:q])
		r = r[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		r = r[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		value := string(r[:q])
		e.properties[key] = value
	}
	return e
}

// EntityFromProperties builds an entity from already parsed key value pairs.
func EntityFromProperties(p map[string]string) *Entity {
	e := &Entity{properties: make(map[string]string, len(p))}
	for k, v := range p {
		e.properties[k] = v
	}
	return e
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

func (e *Entity) Name() (string, bool) {
	v, ok := e.properties["classname"]
	return v, ok
}

// ValueForKey returns the value or "" if the key is not set.
func (e *Entity) ValueForKey(key string) string {
	return e.properties[key]
}

// FloatForKey returns the value parsed as float, 0 if missing or broken.
func (e *Entity) FloatForKey(key string) float32 {
	v, ok := e.properties[key]
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
	if err != nil {
		return 0
	}
	return float32(f)
}

// VectorForKey parses values like "10 -4 32". Missing components are 0.
func (e *Entity) VectorForKey(key string) vec.Vec3 {
	var r vec.Vec3
	for i, f := range strings.Fields(e.properties[key]) {
		if i >= 3 {
			break
		}
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			continue
		}
		r[i] = float32(v)
	}
	return r
}

func (e *Entity) PropertyNames() []string {
	n := []string{}
	for k := range e.properties {
		n = append(n, k)
	}
	return n
}

func ParseEntities(data []byte) []*Entity {
	/*
		The data looks like:
		{
		  "name" "value"
		  "name2" "value2"
		}
		{
		  "name3" "value"
		  {
		    ()()()...
		  }
		}
		But I have not seen the nested stuff
	*/
	// First split the entities
	es := []*Entity{}
	var ess [][]byte
	var ob, q int
	start := -1
	for i, b := range data {
		switch b {
		case '{':
			if q != 0 {
				break
			}
			if start == -1 {
				start = i
			} else {
				ob++
			}
		case '}':
			if q != 0 {
				break
			}
			if start == -1 {
				// Bad input
				return nil
			}
			if ob == 0 {
				ess = append(ess, data[start:i+1])
				start = -1
			} else {
				ob--
			}
		case '"':
			if q == 0 {
				q++
			} else {
				q--
			}
		}
	}
	for _, e := range ess {
		es = append(es, NewEntity(e))
	}
	return es
}

// FindEntity returns the first entity with key set to value.
func FindEntity(es []*Entity, key, value string) *Entity {
	for _, e := range es {
		if v, ok := e.properties[key]; ok && v == value {
			return e
		}
	}
	return nil
}
