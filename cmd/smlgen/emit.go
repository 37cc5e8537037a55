// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

var primitiveGoType = map[string]string{
	"Unsigned8": "uint8", "Unsigned16": "uint16", "Unsigned32": "uint32", "Unsigned64": "uint64",
	"Integer8": "int8", "Integer16": "int16", "Integer32": "int32", "Integer64": "int64",
	"Boolean": "bool", "Octet String": "[]byte",
}

// accessor names a tlv.Item method (or AsList, for complex types) able to
// resolve a value of the given primitive type name.
var primitiveAccessor = map[string]string{
	"Unsigned8": "IntoU8", "Unsigned16": "IntoU16", "Unsigned32": "IntoU32", "Unsigned64": "IntoU64",
	"Integer8": "IntoI8", "Integer16": "IntoI16", "Integer32": "IntoI32", "Integer64": "IntoI64",
	"Boolean": "IntoBool",
}

func resolveTypeName(g *Grammar, name string) string {
	if resolved, ok := g.Typedefs[name]; ok {
		return resolved
	}
	return name
}

func stripSMLPrefix(name string) string {
	return strings.TrimPrefix(name, "SML_")
}

// goType resolves a grammar type name to the Go type the field accessor
// should produce: a primitive, []byte for octet strings, or the PascalCase
// name of another definition (rendered as *Name -- defined types are always
// decoded behind a pointer since every field in this grammar is either a
// primitive or a pointer-sized complex value).
func goType(g *Grammar, name string) string {
	resolved := stripSMLPrefix(resolveTypeName(g, name))
	if t, ok := primitiveGoType[resolved]; ok {
		return t
	}
	if _, ok := g.Types[name]; ok {
		return "*" + pascalName(resolved)
	}
	return "*" + pascalName(resolved)
}

func isPrimitive(g *Grammar, name string) bool {
	resolved := stripSMLPrefix(resolveTypeName(g, name))
	_, ok := primitiveGoType[resolved]
	return ok
}

// RenderField is one struct field plus enough information for the template
// to emit the matching decode statement.
type RenderField struct {
	GoName    string
	GoType    string
	Optional  bool
	Primitive bool
	Accessor  string // tlv.Item accessor, when Primitive
	TypeName  string // the decode<TypeName> function to call otherwise
}

// RenderVariant is one Choice alternative.
type RenderVariant struct {
	GoName   string
	TagConst string
	TagValue uint64
	TypeName string
	Primitive bool
}

// RenderType is one definition rendered into template-ready shape.
type RenderType struct {
	Name       string
	Kind       Kind
	Fields     []RenderField
	Variants   []RenderVariant
	ElementTyp string
}

// IsSequence and IsChoice steer the template: text/template's eq compares by
// reflect basic kind, which a named uint8 type and an untyped int literal
// don't reliably share, so the branch is a method instead of an inline
// comparison.
func (r RenderType) IsSequence() bool { return r.Kind == KindSequence }
func (r RenderType) IsChoice() bool   { return r.Kind == KindChoice }

func buildRenderTypes(g *Grammar) []RenderType {
	names := make([]string, 0, len(g.Types))
	for name := range g.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]RenderType, 0, len(names))
	for _, name := range names {
		def := g.Types[name]
		rt := RenderType{Name: pascalName(stripSMLPrefix(name)), Kind: def.Kind}

		switch def.Kind {
		case KindSequence:
			for _, f := range def.Fields {
				rf := RenderField{
					GoName:   pascalName(f.Name),
					GoType:   goType(g, f.TypeName),
					Optional: f.Optional,
				}
				if isPrimitive(g, f.TypeName) {
					rf.Primitive = true
					rf.Accessor = primitiveAccessor[stripSMLPrefix(resolveTypeName(g, f.TypeName))]
				} else {
					rf.TypeName = pascalName(stripSMLPrefix(resolveTypeName(g, f.TypeName)))
				}
				rt.Fields = append(rt.Fields, rf)
			}
		case KindChoice:
			variantNames := make([]string, 0, len(def.Variants))
			for vname := range def.Variants {
				variantNames = append(variantNames, vname)
			}
			sort.Strings(variantNames)
			for _, vname := range variantNames {
				v := def.Variants[vname]
				rt.Variants = append(rt.Variants, RenderVariant{
					GoName:    pascalName(vname),
					TagConst:  fmt.Sprintf("0x%08X", v.Value),
					TagValue:  v.Value,
					TypeName:  pascalName(stripSMLPrefix(resolveTypeName(g, v.TypeName))),
					Primitive: isPrimitive(g, v.TypeName),
				})
			}
		case KindImplicitChoice:
			variantNames := make([]string, 0, len(def.ImplicitTypes))
			for vname := range def.ImplicitTypes {
				variantNames = append(variantNames, vname)
			}
			sort.Strings(variantNames)
			for _, vname := range variantNames {
				rt.Variants = append(rt.Variants, RenderVariant{
					GoName:    pascalName(vname),
					TypeName:  pascalName(stripSMLPrefix(resolveTypeName(g, def.ImplicitTypes[vname]))),
					Primitive: isPrimitive(g, def.ImplicitTypes[vname]),
				})
			}
		case KindSequenceOf:
			for _, ety := range def.ElementTypes {
				rt.ElementTyp = pascalName(stripSMLPrefix(resolveTypeName(g, ety)))
				break
			}
		}
		out = append(out, rt)
	}
	return out
}

// sourceTemplate covers Sequence and Choice definitions, the two kinds this
// grammar's message bodies are actually built from. ImplicitChoice and
// SequenceOf definitions are parsed and validated (buildRenderTypes still
// walks them for dependency checking) but emit nothing here: the grammar
// has exactly one of each (SML_Value and the response value list), and both
// were hand-written in package types once rather than templated.
const sourceTemplate = `// Code generated by smlgen. DO NOT EDIT.

package {{.Package}}

import "code.hybscloud.com/sml/tlv"
{{range .Types}}
{{if .IsSequence}}
type {{.Name}} struct {
{{- range .Fields}}
	{{.GoName}} {{if and .Primitive .Optional}}*{{end}}{{.GoType}}
{{- end}}
}

func decode{{.Name}}(list *tlv.List) (*{{.Name}}, error) {
	v := &{{.Name}}{}
	var item *tlv.Item
	var err error
{{range .Fields}}
	if item, err = list.Next(); err != nil {
		return nil, err
	}
{{if .Primitive}}
{{if .Optional}}
	if item.Type != tlv.TypeString || item.Len != 0 {
		val, err := item.{{.Accessor}}()
		if err != nil {
			return nil, err
		}
		v.{{.GoName}} = &val
	}
{{else}}
	if v.{{.GoName}}, err = item.{{.Accessor}}(); err != nil {
		return nil, err
	}
{{end}}
{{else}}
{{if .Optional}}
	if item.Type != tlv.TypeString || item.Len != 0 {
		sub, err := item.AsList()
		if err != nil {
			return nil, err
		}
		if v.{{.GoName}}, err = decode{{.TypeName}}(sub); err != nil {
			return nil, err
		}
	}
{{else}}
	sub, err := item.AsList()
	if err != nil {
		return nil, err
	}
	if v.{{.GoName}}, err = decode{{.TypeName}}(sub); err != nil {
		return nil, err
	}
{{end}}
{{end}}
{{end}}
	list.SkipRest()
	return v, nil
}
{{end}}
{{if .IsChoice}}
type {{.Name}} struct {
	Tag  uint32
{{- range .Variants}}
	{{.GoName}} *{{.TypeName}}
{{- end}}
}

func decode{{.Name}}(item *tlv.Item) (*{{.Name}}, error) {
	choice, err := item.AsList()
	if err != nil {
		return nil, err
	}
	tagItem, err := choice.Next()
	if err != nil {
		return nil, err
	}
	tag, err := tagItem.IntoU32Relaxed()
	if err != nil {
		return nil, err
	}
	dataItem, err := choice.Next()
	if err != nil {
		return nil, err
	}
	v := &{{.Name}}{Tag: tag}
	switch tag {
{{- range .Variants}}
	case {{.TagConst}}:
		sub, err := dataItem.AsList()
		if err != nil {
			return nil, err
		}
		if v.{{.GoName}}, err = decode{{.TypeName}}(sub); err != nil {
			return nil, err
		}
{{- end}}
	default:
		if err := dataItem.Discard(); err != nil {
			return nil, err
		}
	}
	choice.SkipRest()
	return v, nil
}
{{end}}
{{end}}
`

// Render renders every definition in g into one Go source file for package.
func Render(g *Grammar, pkg string) ([]byte, error) {
	tmpl, err := template.New("smlgen").Parse(sourceTemplate)
	if err != nil {
		return nil, fmt.Errorf("smlgen: parse template: %w", err)
	}
	var buf bytes.Buffer
	data := struct {
		Package string
		Types   []RenderType
	}{Package: pkg, Types: buildRenderTypes(g)}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("smlgen: render: %w", err)
	}
	return buf.Bytes(), nil
}
