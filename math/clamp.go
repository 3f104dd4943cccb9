// SPDX-License-Identifier: GPL-2.0-or-later

package math

type Number interface {
	int64 | float64 | float32 | int
}

func Clamp[K Number](min, val, max K) K {
	if min > val {
		return min
	} else if max < val {
		return max
	}
	return val
}

// Lerp returns a + frac*(b-a)
func Lerp[K float32 | float64](a, b, frac K) K {
	return a + frac*(b-a)
}

// Max3 returns the largest of the three values
func Max3[K Number](a, b, c K) K {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
