// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"regexp"
	"unicode"

	"github.com/iancoleman/strcase"
)

var reSeparators = regexp.MustCompile(`[.\-]+`)

// identName turns an arbitrary grammar name into a valid Go identifier in
// the given case. A leading digit gets an "N_" prefix first, since Go
// identifiers can't start with one.
func identName(s string, toCase func(string) string) string {
	s = reSeparators.ReplaceAllString(s, "_")
	if r := []rune(s); len(r) > 0 && unicode.IsDigit(r[0]) {
		s = "N_" + s
	}
	return toCase(s)
}

func pascalName(s string) string { return identName(s, strcase.ToCamel) }
func fieldName(s string) string  { return identName(s, strcase.ToCamel) }
func snakeName(s string) string  { return identName(s, strcase.ToSnake) }
