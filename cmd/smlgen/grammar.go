// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command smlgen reads an ASN.1-flavoured grammar excerpt (the kind
// extracted from the BSI TR-03109 specification text) and emits the Go
// schema accessors it describes, in the style hand-written in package
// types. It is a development-time tool, not something the decoder imports.
package main

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Kind discriminates the four ASN.1 constructs the grammar excerpt uses.
type Kind uint8

const (
	KindSequence Kind = iota
	KindSequenceOf
	KindChoice
	KindImplicitChoice
)

// Variant is one tagged alternative of a Choice.
type Variant struct {
	TypeName string
	Value    uint64
}

// Field is one member of a Sequence, in declaration order.
type Field struct {
	Name     string
	TypeName string
	Optional bool
}

// Definition is one named grammar rule, exactly one of its Kind-matching
// fields populated.
type Definition struct {
	Name           string
	Kind           Kind
	Fields         []Field            // Sequence
	ElementTypes   map[string]string  // SequenceOf: field name -> type name
	Variants       map[string]Variant // Choice: variant name -> (type, tag)
	ImplicitTypes  map[string]string  // ImplicitChoice: variant name -> type name
}

// Grammar is the parsed form of the whole excerpt.
type Grammar struct {
	Types    map[string]*Definition
	Typedefs map[string]string // plain "Name ::= OtherName" aliases
}

var (
	reStart           = regexp.MustCompile(`([a-zA-Z0-9_.]+)\s*::=\s*([a-zA-Z0-9_. ]+)`)
	reOpen            = regexp.MustCompile(`^\s*\{\s*$`)
	reClose           = regexp.MustCompile(`^\s*}\s*$`)
	reCloseWithParen  = regexp.MustCompile(`^\s*}\s+.*\)$`)
	reField           = regexp.MustCompile(`^\s*([a-zA-Z0-9_\-.]+)\s+(\[0x([0-9a-fA-F]+)]\s+)?([a-zA-Z0-9_.? ]+)\s*,?\s*(\(.*)?$`)
	reCosem           = regexp.MustCompile(`^SML_[a-zA-Z]*Cosem.*$`)
)

// ParseGrammar reads a grammar excerpt from r and returns its definitions.
//
// Block bodies that span a wrapped parenthesised comment (one that doesn't
// close on the same line it opens) are scanned past rather than parsed --
// the grammar excerpts this tool consumes wrap long field comments across
// lines, and only the comment text, never a field it could describe, spans
// the wrap.
func ParseGrammar(r io.Reader) (*Grammar, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("smlgen: read grammar: %w", err)
	}

	g := &Grammar{Types: make(map[string]*Definition), Typedefs: make(map[string]string)}

	i := 0
	next := func() (string, bool) {
		if i >= len(lines) {
			return "", false
		}
		l := lines[i]
		i++
		return l, true
	}

	for {
		lineStart, ok := next()
		if !ok {
			break
		}
		m := reStart.FindStringSubmatch(lineStart)
		if m == nil {
			continue
		}
		name, ty := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])

		line, ok := next()
		if !ok {
			break
		}
		if !reOpen.MatchString(line) {
			if name != "EndOfSmlMsg" {
				g.Typedefs[name] = ty
			}
			continue
		}

		def := &Definition{Name: name}
		switch ty {
		case "CHOICE":
			def.Kind = KindChoice
			def.Variants = make(map[string]Variant)
		case "IMPLICIT CHOICE":
			def.Kind = KindImplicitChoice
			def.ImplicitTypes = make(map[string]string)
		case "SEQUENCE":
			def.Kind = KindSequence
		case "SEQUENCE OF":
			def.Kind = KindSequenceOf
			def.ElementTypes = make(map[string]string)
		default:
			return nil, fmt.Errorf("smlgen: unsupported type: %s", ty)
		}

		if err := parseBlock(def, next); err != nil {
			return nil, fmt.Errorf("smlgen: %s: %w", name, err)
		}

		if name == "..." || name == "Boolean" ||
			strings.HasPrefix(name, "Unsigned") || strings.HasPrefix(name, "Integer") ||
			reCosem.MatchString(name) {
			continue
		}
		g.Types[name] = def
	}

	return g, nil
}

func parseBlock(def *Definition, next func() (string, bool)) error {
	for {
		line, ok := next()
		if !ok {
			return fmt.Errorf("unexpected end of input in block")
		}
		if reClose.MatchString(line) {
			return nil
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "alle Datentyp aus GreenBook Seite 210 übernehmen!" {
			continue
		}

		m := reField.FindStringSubmatch(line)
		if m == nil {
			return fmt.Errorf("can't parse field line: %q", line)
		}
		name := strings.TrimSpace(m[1])
		rawValue := m[3]
		fields := strings.Fields(strings.TrimSpace(m[4]))

		optional := false
		if len(fields) > 1 && fields[len(fields)-1] == "OPTIONAL" {
			fields = fields[:len(fields)-1]
			optional = true
		}
		typeName := strings.Join(fields, " ")
		switch typeName {
		case "SML_Value10":
			typeName = "SML_Value"
		case "Octet String9":
			typeName = "Octet String"
		case "boolean":
			typeName = "Boolean"
		}

		comment := m[5]
		if comment != "" && !strings.HasSuffix(comment, ")") {
			for {
				cl, ok := next()
				if !ok {
					return fmt.Errorf("unterminated comment after %q", name)
				}
				if strings.HasSuffix(cl, ")") {
					if reCloseWithParen.MatchString(cl) {
						return nil
					}
					break
				}
			}
		}

		switch def.Kind {
		case KindSequence:
			if rawValue != "" {
				return fmt.Errorf("sequence field %q can't have a tag value", name)
			}
			def.Fields = append(def.Fields, Field{Name: name, TypeName: typeName, Optional: optional})
		case KindChoice:
			if optional {
				return fmt.Errorf("choice variant %q can't be optional", name)
			}
			value, err := strconv.ParseUint(rawValue, 16, 64)
			if err != nil {
				return fmt.Errorf("choice variant %q: bad tag value: %w", name, err)
			}
			if name != "SetProcParameterResponse" && !reCosem.MatchString(typeName) {
				def.Variants[name] = Variant{TypeName: typeName, Value: value}
			}
		case KindImplicitChoice:
			if rawValue != "" {
				return fmt.Errorf("implicit choice variant %q can't have a tag value", name)
			}
			if optional {
				return fmt.Errorf("implicit choice variant %q can't be optional", name)
			}
			def.ImplicitTypes[name] = typeName
		case KindSequenceOf:
			if rawValue != "" {
				return fmt.Errorf("sequence-of element %q can't have a tag value", name)
			}
			if optional {
				return fmt.Errorf("sequence-of element %q can't be optional", name)
			}
			def.ElementTypes[name] = typeName
		}
	}
}
