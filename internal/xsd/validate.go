package xsd

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Validate checks doc against the schema. It returns nil when the document
// conforms and a *[ValidationError] otherwise.
func (s *Schema) Validate(doc *etree.Document) error {
	v := &validator{}

	root := doc.Root()

	switch {
	case root == nil:
		v.fail("/", "document has no root element")
	case root.NamespaceURI() != "":
		v.fail("/"+root.FullTag(), "root element must not be in a namespace")
	case s.elements[root.Tag] == nil:
		v.fail("/"+root.Tag, fmt.Sprintf("no declaration for root element %q", root.Tag))
	default:
		v.element(s.elements[root.Tag], root, "/"+root.Tag)
	}

	if len(v.violations) > 0 {
		return &ValidationError{Violations: v.violations}
	}

	return nil
}

// --- Private api ---

type validator struct {
	violations []Violation
}

func (v *validator) fail(path, msg string) {
	v.violations = append(v.violations, Violation{Path: path, Message: msg})
}

func (v *validator) element(decl *ElementDecl, el *etree.Element, path string) {
	v.attributes(el, path)

	if decl.Complex != nil {
		v.complexContent(decl.Complex, el, path)
	} else {
		v.simpleContent(decl.Simple, el, path)
	}

	for _, u := range decl.Uniques {
		v.unique(u, el, path)
	}
}

func (v *validator) attributes(el *etree.Element, path string) {
	for _, attr := range el.Attr {
		if attr.Space == "xmlns" || (attr.Space == "" && attr.Key == "xmlns") {
			continue
		}

		if attr.NamespaceURI() == InstanceNamespace {
			continue
		}

		v.fail(path, fmt.Sprintf("attribute %q is not allowed", attr.FullKey()))
	}
}

func (v *validator) simpleContent(st *SimpleType, el *etree.Element, path string) {
	if children := el.ChildElements(); len(children) > 0 {
		v.fail(path, fmt.Sprintf("element must not contain child elements, found <%s>", children[0].FullTag()))

		return
	}

	err := st.Check(textOf(el))
	if err != nil {
		v.fail(path, err.Error())
	}
}

func (v *validator) complexContent(ct *ComplexType, el *etree.Element, path string) {
	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok && !cd.IsWhitespace() {
			v.fail(path, fmt.Sprintf("text %q is not allowed in element-only content", strings.TrimSpace(cd.Data)))

			return
		}
	}

	children := el.ChildElements()
	counts := make(map[string]int)
	i := 0

	for _, particle := range ct.Sequence {
		n := 0

		for i < len(children) && (particle.Max < 0 || n < particle.Max) && matches(children[i], particle.Decl.Name) {
			child := children[i]
			counts[child.Tag]++

			v.element(particle.Decl, child, fmt.Sprintf("%s/%s[%d]", path, child.Tag, counts[child.Tag]))

			i++
			n++
		}

		if n < particle.Min {
			if i < len(children) {
				v.fail(path, fmt.Sprintf("expected <%s>, found <%s>", particle.Decl.Name, children[i].FullTag()))
			} else {
				v.fail(path, fmt.Sprintf("missing required element <%s>", particle.Decl.Name))
			}

			return
		}
	}

	if i < len(children) {
		v.fail(path, fmt.Sprintf("unexpected element <%s>", children[i].FullTag()))
	}
}

func matches(el *etree.Element, name string) bool {
	return el.Tag == name && el.NamespaceURI() == ""
}

func (v *validator) unique(u Unique, scope *etree.Element, path string) {
	seen := make(map[string]bool)

	for _, node := range selectSteps(scope, u.Selector) {
		value, ok := fieldValue(node, u.Field)
		if !ok {
			continue
		}

		if seen[value] {
			v.fail(path, fmt.Sprintf("duplicate value %q for unique constraint %q", value, u.Name))

			continue
		}

		seen[value] = true
	}
}

func selectSteps(scope *etree.Element, steps []string) []*etree.Element {
	nodes := []*etree.Element{scope}

	for _, step := range steps {
		var next []*etree.Element

		for _, node := range nodes {
			for _, child := range node.ChildElements() {
				if step == "*" || matches(child, step) {
					next = append(next, child)
				}
			}
		}

		nodes = next
	}

	return nodes
}

func fieldValue(node *etree.Element, field string) (string, bool) {
	if field != "." {
		var target *etree.Element

		for _, child := range node.ChildElements() {
			if matches(child, field) {
				target = child

				break
			}
		}

		if target == nil {
			return "", false
		}

		node = target
	}

	return strings.Join(strings.Fields(textOf(node)), " "), true
}

func textOf(el *etree.Element) string {
	var b strings.Builder

	for _, tok := range el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}

	return b.String()
}
