// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package utils

// BoolDefaultTrue reads an optional config boolean that is on unless
// explicitly turned off.
func BoolDefaultTrue(value *bool) bool {
	if value != nil {
		return *value
	}
	return true
}
