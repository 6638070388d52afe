// Copyright (c) 2020 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

package utils

import (
	"regexp"
	"testing"
)

func globMustCompile(glob string) *regexp.Regexp {
	re, err := CompileGlob(glob)
	if err != nil {
		panic(err)
	}
	return re
}

func assertMatches(glob, str string, match bool, t *testing.T) {
	re := globMustCompile(glob)
	if re.MatchString(str) != match {
		t.Errorf("should %s match %s? %t, but got %t instead", glob, str, match, !match)
	}
}

func TestGlob(t *testing.T) {
	assertMatches("https://irc.example.net", "https://irc.example.net", true, t)
	assertMatches("https://*.example.net", "https://web.example.net", true, t)
	assertMatches("*://*.example.net", "https://web.example.net", true, t)
	assertMatches("*://*.example.net", "https://example.net", false, t)
	assertMatches("*://*.example.net", "https://githubusercontent.com", false, t)
	assertMatches("*://*.example.net", "https://web.example.net.example.com", false, t)

	assertMatches("", "", true, t)
	assertMatches("", "x", false, t)
	assertMatches("*", "", true, t)
	assertMatches("*", "x", true, t)

	assertMatches("c?b", "cab", true, t)
	assertMatches("c?b", "cb", false, t)
	assertMatches("c?b", "cube", false, t)
	assertMatches("?*", "", false, t)

	assertMatches("Sk?ne", "Skåne", true, t)
}

func TestGlobInvalidUTF8(t *testing.T) {
	if _, err := CompileGlob("https://\xff.example.net"); err == nil {
		t.Error("expected an error compiling a glob with invalid UTF-8")
	}
}

func BenchmarkGlob(b *testing.B) {
	g := globMustCompile("https://*example.net")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.MatchString("https://www.example.net")
	}
}
