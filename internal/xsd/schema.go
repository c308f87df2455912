package xsd

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Schema is a parsed schema. It is immutable and safe for concurrent use.
type Schema struct {
	elements map[string]*ElementDecl
}

// Element returns the global element declaration named name, or nil.
func (s *Schema) Element(name string) *ElementDecl {
	return s.elements[name]
}

// ElementDecl declares an element. Exactly one of Simple and Complex is set
// once the schema is resolved.
type ElementDecl struct {
	Name    string
	Simple  *SimpleType
	Complex *ComplexType
	Uniques []Unique

	typeName string
}

// ComplexType is element-only content described by one sequence.
type ComplexType struct {
	Name     string
	Sequence []Particle
}

// Particle is one entry of a sequence.
type Particle struct {
	Decl *ElementDecl
	Min  int
	// Max is -1 for unbounded.
	Max int

	ref string
}

// Unique is an xs:unique identity constraint.
type Unique struct {
	Name string
	// Selector holds the child steps selecting the constrained nodes,
	// relative to the declaring element. "*" matches any child.
	Selector []string
	// Field is "." for the node's own text or a child element name.
	Field string
}

// SimpleType is a builtin type, optionally restricted by facets.
type SimpleType struct {
	Name string
	// Base is the builtin type at the root of the derivation chain.
	Base   string
	Parent *SimpleType

	Enumeration  []string
	MinLength    int
	MaxLength    int
	TotalDigits  int
	MinInclusive *big.Int
	MaxInclusive *big.Int
	Patterns     []*regexp.Regexp

	baseName string
}

var builtinTypes = map[string]bool{
	"string":             true,
	"normalizedString":   true,
	"token":              true,
	"integer":            true,
	"nonNegativeInteger": true,
	"positiveInteger":    true,
	"date":               true,
	"boolean":            true,
}

// Parse parses schema source.
func Parse(data []byte) (*Schema, error) {
	doc := etree.NewDocument()

	err := doc.ReadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "schema" || root.NamespaceURI() != Namespace {
		return nil, fmt.Errorf("%w: root element is not xs:schema", ErrSchema)
	}

	p := &parser{
		schema:       &Schema{elements: make(map[string]*ElementDecl)},
		simpleTypes:  make(map[string]*SimpleType),
		complexTypes: make(map[string]*ComplexType),
	}

	for _, child := range root.ChildElements() {
		err := p.topLevel(child)
		if err != nil {
			return nil, err
		}
	}

	err = p.resolve()
	if err != nil {
		return nil, err
	}

	return p.schema, nil
}

// --- Private api ---

type parser struct {
	schema       *Schema
	simpleTypes  map[string]*SimpleType
	complexTypes map[string]*ComplexType

	decls     []*ElementDecl
	particles []*Particle
	simples   []*SimpleType
}

func (p *parser) topLevel(el *etree.Element) error {
	if el.NamespaceURI() != Namespace {
		return fmt.Errorf("%w: unexpected element <%s>", ErrSchema, el.FullTag())
	}

	switch el.Tag {
	case "annotation":
		return nil
	case "element":
		decl, err := p.element(el)
		if err != nil {
			return err
		}

		if _, dup := p.schema.elements[decl.Name]; dup {
			return fmt.Errorf("%w: element %q declared twice", ErrSchema, decl.Name)
		}

		p.schema.elements[decl.Name] = decl

		return nil
	case "simpleType":
		name := el.SelectAttrValue("name", "")
		if name == "" {
			return fmt.Errorf("%w: top-level simpleType without a name", ErrSchema)
		}

		st, err := p.simpleType(el)
		if err != nil {
			return err
		}

		st.Name = name
		p.simpleTypes[name] = st

		return nil
	case "complexType":
		name := el.SelectAttrValue("name", "")
		if name == "" {
			return fmt.Errorf("%w: top-level complexType without a name", ErrSchema)
		}

		ct, err := p.complexType(el)
		if err != nil {
			return err
		}

		ct.Name = name
		p.complexTypes[name] = ct

		return nil
	default:
		return fmt.Errorf("%w: xs:%s", ErrUnsupported, el.Tag)
	}
}

func (p *parser) element(el *etree.Element) (*ElementDecl, error) {
	name := el.SelectAttrValue("name", "")
	if name == "" {
		return nil, fmt.Errorf("%w: element declaration without a name", ErrSchema)
	}

	decl := &ElementDecl{Name: name, typeName: localName(el.SelectAttrValue("type", ""))}
	p.decls = append(p.decls, decl)

	for _, child := range el.ChildElements() {
		if child.NamespaceURI() != Namespace {
			return nil, fmt.Errorf("%w: unexpected element <%s> in %q", ErrSchema, child.FullTag(), name)
		}

		switch child.Tag {
		case "annotation":
		case "simpleType":
			st, err := p.simpleType(child)
			if err != nil {
				return nil, fmt.Errorf("element %q: %w", name, err)
			}

			decl.Simple = st
		case "complexType":
			ct, err := p.complexType(child)
			if err != nil {
				return nil, fmt.Errorf("element %q: %w", name, err)
			}

			decl.Complex = ct
		case "unique":
			u, err := parseUnique(child)
			if err != nil {
				return nil, fmt.Errorf("element %q: %w", name, err)
			}

			decl.Uniques = append(decl.Uniques, u)
		default:
			return nil, fmt.Errorf("%w: xs:%s in element %q", ErrUnsupported, child.Tag, name)
		}
	}

	if decl.typeName != "" && (decl.Simple != nil || decl.Complex != nil) {
		return nil, fmt.Errorf("%w: element %q has both a type attribute and an inline type", ErrSchema, name)
	}

	return decl, nil
}

func (p *parser) complexType(el *etree.Element) (*ComplexType, error) {
	ct := &ComplexType{}

	if el.SelectAttrValue("mixed", "false") == "true" {
		return nil, fmt.Errorf("%w: mixed content", ErrUnsupported)
	}

	seen := false

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "annotation":
			continue
		case "sequence":
			if seen {
				return nil, fmt.Errorf("%w: more than one sequence", ErrSchema)
			}

			seen = true

			for _, item := range child.ChildElements() {
				if item.Tag == "annotation" {
					continue
				}

				if item.Tag != "element" {
					return nil, fmt.Errorf("%w: xs:%s inside xs:sequence", ErrUnsupported, item.Tag)
				}

				particle, err := p.particle(item)
				if err != nil {
					return nil, err
				}

				ct.Sequence = append(ct.Sequence, particle)
			}
		default:
			return nil, fmt.Errorf("%w: xs:%s in complexType", ErrUnsupported, child.Tag)
		}
	}

	for i := range ct.Sequence {
		p.particles = append(p.particles, &ct.Sequence[i])
	}

	return ct, nil
}

func (p *parser) particle(el *etree.Element) (Particle, error) {
	minOccurs, err := occurs(el, "minOccurs")
	if err != nil {
		return Particle{}, err
	}

	maxOccurs, err := occurs(el, "maxOccurs")
	if err != nil {
		return Particle{}, err
	}

	if maxOccurs >= 0 && maxOccurs < minOccurs {
		return Particle{}, fmt.Errorf("%w: maxOccurs < minOccurs", ErrSchema)
	}

	particle := Particle{Min: minOccurs, Max: maxOccurs}

	if ref := el.SelectAttrValue("ref", ""); ref != "" {
		particle.ref = localName(ref)

		return particle, nil
	}

	decl, err := p.element(el)
	if err != nil {
		return Particle{}, err
	}

	particle.Decl = decl

	return particle, nil
}

func occurs(el *etree.Element, attr string) (int, error) {
	raw := el.SelectAttrValue(attr, "1")
	if raw == "unbounded" && attr == "maxOccurs" {
		return -1, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrSchema, attr, raw)
	}

	return n, nil
}

func (p *parser) simpleType(el *etree.Element) (*SimpleType, error) {
	var restriction *etree.Element

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "annotation":
		case "restriction":
			restriction = child
		default:
			return nil, fmt.Errorf("%w: xs:%s in simpleType", ErrUnsupported, child.Tag)
		}
	}

	if restriction == nil {
		return nil, fmt.Errorf("%w: simpleType without restriction", ErrSchema)
	}

	st := &SimpleType{
		MinLength:   -1,
		MaxLength:   -1,
		TotalDigits: -1,
		baseName:    localName(restriction.SelectAttrValue("base", "")),
	}
	if st.baseName == "" {
		return nil, fmt.Errorf("%w: restriction without base", ErrSchema)
	}

	p.simples = append(p.simples, st)

	for _, facet := range restriction.ChildElements() {
		err := st.addFacet(facet)
		if err != nil {
			return nil, err
		}
	}

	return st, nil
}

func (st *SimpleType) addFacet(facet *etree.Element) error {
	value := facet.SelectAttrValue("value", "")

	switch facet.Tag {
	case "annotation":
	case "enumeration":
		st.Enumeration = append(st.Enumeration, value)
	case "minLength":
		return facetInt(value, &st.MinLength)
	case "maxLength":
		return facetInt(value, &st.MaxLength)
	case "length":
		err := facetInt(value, &st.MinLength)
		if err != nil {
			return err
		}

		st.MaxLength = st.MinLength
	case "totalDigits":
		return facetInt(value, &st.TotalDigits)
	case "minInclusive":
		n, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
		if !ok {
			return fmt.Errorf("%w: minInclusive %q", ErrUnsupported, value)
		}

		st.MinInclusive = n
	case "maxInclusive":
		n, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
		if !ok {
			return fmt.Errorf("%w: maxInclusive %q", ErrUnsupported, value)
		}

		st.MaxInclusive = n
	case "pattern":
		re, err := regexp.Compile("^(?:" + value + ")$")
		if err != nil {
			return fmt.Errorf("%w: pattern %q: %w", ErrUnsupported, value, err)
		}

		st.Patterns = append(st.Patterns, re)
	case "whiteSpace":
		// Whitespace handling follows the builtin base type.
	default:
		return fmt.Errorf("%w: facet xs:%s", ErrUnsupported, facet.Tag)
	}

	return nil
}

func facetInt(raw string, dst *int) error {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return fmt.Errorf("%w: facet value %q", ErrSchema, raw)
	}

	*dst = n

	return nil
}

func parseUnique(el *etree.Element) (Unique, error) {
	u := Unique{Name: el.SelectAttrValue("name", "")}

	var selector, field string

	fields := 0

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "annotation":
		case "selector":
			selector = child.SelectAttrValue("xpath", "")
		case "field":
			field = child.SelectAttrValue("xpath", "")
			fields++
		default:
			return Unique{}, fmt.Errorf("%w: xs:%s in xs:unique", ErrUnsupported, child.Tag)
		}
	}

	if selector == "" || fields != 1 {
		return Unique{}, fmt.Errorf("%w: unique %q needs one selector and one field", ErrUnsupported, u.Name)
	}

	steps, err := splitPath(selector)
	if err != nil {
		return Unique{}, err
	}

	u.Selector = steps

	field = strings.TrimSpace(field)
	if field != "." && !isName(field) {
		return Unique{}, fmt.Errorf("%w: field xpath %q", ErrUnsupported, field)
	}

	u.Field = field

	return u, nil
}

func splitPath(xpath string) ([]string, error) {
	var steps []string

	for _, step := range strings.Split(strings.TrimSpace(xpath), "/") {
		step = strings.TrimSpace(step)

		switch {
		case step == ".":
			continue
		case step == "*" || isName(step):
			steps = append(steps, step)
		default:
			return nil, fmt.Errorf("%w: selector xpath %q", ErrUnsupported, xpath)
		}
	}

	return steps, nil
}

var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

func isName(s string) bool {
	return nameRe.MatchString(s)
}

func localName(qname string) string {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[i+1:]
	}

	return qname
}

func (p *parser) resolve() error {
	for _, particle := range p.particles {
		if particle.Decl != nil {
			continue
		}

		decl, ok := p.schema.elements[particle.ref]
		if !ok {
			return fmt.Errorf("%w: reference to undeclared element %q", ErrSchema, particle.ref)
		}

		particle.Decl = decl
	}

	for _, st := range p.simples {
		err := p.resolveSimple(st, 0)
		if err != nil {
			return err
		}
	}

	for _, decl := range p.decls {
		if decl.Simple != nil || decl.Complex != nil {
			continue
		}

		switch {
		case decl.typeName == "":
			return fmt.Errorf("%w: element %q has no type (xs:anyType)", ErrUnsupported, decl.Name)
		case builtinTypes[decl.typeName]:
			decl.Simple = &SimpleType{Name: decl.typeName, Base: decl.typeName, MinLength: -1, MaxLength: -1, TotalDigits: -1}
		case p.simpleTypes[decl.typeName] != nil:
			decl.Simple = p.simpleTypes[decl.typeName]
		case p.complexTypes[decl.typeName] != nil:
			decl.Complex = p.complexTypes[decl.typeName]
		default:
			return fmt.Errorf("%w: element %q has unknown type %q", ErrSchema, decl.Name, decl.typeName)
		}
	}

	return nil
}

func (p *parser) resolveSimple(st *SimpleType, depth int) error {
	if st.Base != "" {
		return nil
	}

	if depth > len(p.simpleTypes) {
		return fmt.Errorf("%w: circular simpleType derivation", ErrSchema)
	}

	if builtinTypes[st.baseName] {
		st.Base = st.baseName

		return nil
	}

	parent, ok := p.simpleTypes[st.baseName]
	if !ok {
		return fmt.Errorf("%w: unknown base type %q", ErrSchema, st.baseName)
	}

	err := p.resolveSimple(parent, depth+1)
	if err != nil {
		return err
	}

	st.Parent = parent
	st.Base = parent.Base

	return nil
}
