package xsd_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/medialib/internal/fs"
	"github.com/calvinalkan/medialib/internal/xsd"
)

const shelfSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
<xs:element name="name">
    <xs:simpleType>
        <xs:restriction base="xs:string">
            <xs:minLength value="1"/>
        </xs:restriction>
    </xs:simpleType>
</xs:element>
<xs:element name="code">
    <xs:simpleType>
        <xs:restriction base="xs:integer">
            <xs:totalDigits value="4"/>
        </xs:restriction>
    </xs:simpleType>
</xs:element>
<xs:element name="count">
    <xs:simpleType>
        <xs:restriction base="xs:integer">
            <xs:minInclusive value="1"/>
        </xs:restriction>
    </xs:simpleType>
</xs:element>
<xs:element name="state">
    <xs:simpleType>
        <xs:restriction base="xs:string">
            <xs:enumeration value="Yes"/>
            <xs:enumeration value="No"/>
        </xs:restriction>
    </xs:simpleType>
</xs:element>
<xs:element name="added" type="xs:date"/>
<xs:element name="tag" type="xs:string"/>
<xs:element name="tags">
    <xs:complexType>
        <xs:sequence>
            <xs:element ref="tag" minOccurs="1" maxOccurs="unbounded"/>
        </xs:sequence>
    </xs:complexType>
    <xs:unique name="uniqueTag">
        <xs:selector xpath="tag"/>
        <xs:field xpath="."/>
    </xs:unique>
</xs:element>
<xs:element name="thing">
    <xs:complexType>
        <xs:sequence>
            <xs:element ref="name"/>
            <xs:element ref="code"/>
            <xs:element ref="tags" minOccurs="0" maxOccurs="1"/>
            <xs:element ref="count" minOccurs="0" maxOccurs="1"/>
            <xs:element ref="added" minOccurs="0" maxOccurs="1"/>
            <xs:element ref="state"/>
        </xs:sequence>
    </xs:complexType>
</xs:element>
<xs:element name="library">
    <xs:complexType>
        <xs:sequence>
            <xs:element ref="thing" minOccurs="0" maxOccurs="unbounded"/>
        </xs:sequence>
    </xs:complexType>
    <xs:unique name="uniqueName">
        <xs:selector xpath="thing/name"/>
        <xs:field xpath="."/>
    </xs:unique>
</xs:element>
</xs:schema>
`

func mustParse(t *testing.T) *xsd.Schema {
	t.Helper()

	schema, err := xsd.Parse([]byte(shelfSchema))
	require.NoError(t, err, "parse schema")

	return schema
}

func mustDoc(t *testing.T, src string) *etree.Document {
	t.Helper()

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(src), "parse document")

	return doc
}

func Test_Validate_Accepts_Conforming_Documents(t *testing.T) {
	t.Parallel()

	schema := mustParse(t)

	cases := map[string]string{
		"empty library": `<library/>`,
		"minimal item":  `<library><thing><name>a</name><code>12</code><state>No</state></thing></library>`,
		"all fields": `<library xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="shelf.xsd">
  <thing>
    <name>a</name>
    <code>0012</code>
    <tags><tag>x</tag><tag>y</tag></tags>
    <count>3</count>
    <added>2024-02-29</added>
    <state>Yes</state>
  </thing>
  <thing><name>b</name><code> 9999 </code><state>No</state></thing>
</library>`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := schema.Validate(mustDoc(t, src))
			assert.NoError(t, err)
		})
	}
}

func Test_Validate_Rejects_Nonconforming_Documents(t *testing.T) {
	t.Parallel()

	schema := mustParse(t)

	cases := map[string]struct {
		src  string
		want string
	}{
		"wrong root": {
			src:  `<shelf/>`,
			want: "no declaration for root element",
		},
		"missing required": {
			src:  `<library><thing><name>a</name><state>No</state></thing></library>`,
			want: "expected <code>, found <state>",
		},
		"wrong order": {
			src:  `<library><thing><code>1</code><name>a</name><state>No</state></thing></library>`,
			want: "expected <name>, found <code>",
		},
		"trailing element": {
			src:  `<library><thing><name>a</name><code>1</code><state>No</state><extra/></thing></library>`,
			want: "unexpected element <extra>",
		},
		"empty string": {
			src:  `<library><thing><name></name><code>1</code><state>No</state></thing></library>`,
			want: "shorter than 1",
		},
		"enumeration": {
			src:  `<library><thing><name>a</name><code>1</code><state>maybe</state></thing></library>`,
			want: "is not one of [Yes, No]",
		},
		"too many digits": {
			src:  `<library><thing><name>a</name><code>12345</code><state>No</state></thing></library>`,
			want: "more than 4 digits",
		},
		"not an integer": {
			src:  `<library><thing><name>a</name><code>12a</code><state>No</state></thing></library>`,
			want: "is not an integer",
		},
		"below minimum": {
			src:  `<library><thing><name>a</name><code>1</code><count>0</count><state>No</state></thing></library>`,
			want: "less than 1",
		},
		"month out of range": {
			src:  `<library><thing><name>a</name><code>1</code><added>2014-31-08</added><state>No</state></thing></library>`,
			want: "not a valid date",
		},
		"duplicate key": {
			src:  `<library><thing><name>a</name><code>1</code><state>No</state></thing><thing><name>a</name><code>2</code><state>No</state></thing></library>`,
			want: `duplicate value "a" for unique constraint "uniqueName"`,
		},
		"duplicate nested": {
			src:  `<library><thing><name>a</name><code>1</code><tags><tag>x</tag><tag>x</tag></tags><state>No</state></thing></library>`,
			want: `unique constraint "uniqueTag"`,
		},
		"empty wrapper": {
			src:  `<library><thing><name>a</name><code>1</code><tags/><state>No</state></thing></library>`,
			want: "missing required element <tag>",
		},
		"foreign attribute": {
			src:  `<library id="1"/>`,
			want: `attribute "id" is not allowed`,
		},
		"text in element-only content": {
			src:  `<library>loose</library>`,
			want: "not allowed in element-only content",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := schema.Validate(mustDoc(t, tc.src))
			require.ErrorIs(t, err, xsd.ErrInvalid)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func Test_Validate_Reports_Element_Path(t *testing.T) {
	t.Parallel()

	schema := mustParse(t)
	doc := mustDoc(t, `<library>
<thing><name>a</name><code>1</code><state>No</state></thing>
<thing><name>b</name><code>x</code><state>No</state></thing>
</library>`)

	err := schema.Validate(doc)

	var verr *xsd.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "/library/thing[2]/code[1]", verr.Violations[0].Path)
}

func Test_Parse_Rejects_Unsupported_Constructs(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"choice": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
<xs:element name="a"><xs:complexType><xs:choice/></xs:complexType></xs:element></xs:schema>`,
		"attribute": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
<xs:attribute name="a" type="xs:string"/></xs:schema>`,
		"attribute selector": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
<xs:element name="a" type="xs:string"><xs:unique name="u"><xs:selector xpath="@id"/><xs:field xpath="."/></xs:unique></xs:element></xs:schema>`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := xsd.Parse([]byte(src))
			require.ErrorIs(t, err, xsd.ErrUnsupported)
		})
	}
}

func Test_Parse_Rejects_Broken_Schemas(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not xml":        `<xs:schema`,
		"not a schema":   `<library/>`,
		"dangling ref":   `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"><xs:element name="a"><xs:complexType><xs:sequence><xs:element ref="b"/></xs:sequence></xs:complexType></xs:element></xs:schema>`,
		"unknown type":   `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"><xs:element name="a" type="xs:foo"/></xs:schema>`,
		"bad occurrence": `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"><xs:element name="a"><xs:complexType><xs:sequence><xs:element name="b" type="xs:string" minOccurs="x"/></xs:sequence></xs:complexType></xs:element></xs:schema>`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := xsd.Parse([]byte(src))
			require.ErrorIs(t, err, xsd.ErrSchema)
		})
	}
}

func Test_Parse_Resolves_Named_Types(t *testing.T) {
	t.Parallel()

	src := `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
<xs:simpleType name="shortName">
    <xs:restriction base="xs:string"><xs:maxLength value="3"/></xs:restriction>
</xs:simpleType>
<xs:simpleType name="code">
    <xs:restriction base="shortName"><xs:pattern value="[A-Z]+"/></xs:restriction>
</xs:simpleType>
<xs:complexType name="pair">
    <xs:sequence>
        <xs:element name="left" type="code"/>
        <xs:element name="right" type="xs:positiveInteger"/>
    </xs:sequence>
</xs:complexType>
<xs:element name="root" type="pair"/>
</xs:schema>`

	schema, err := xsd.Parse([]byte(src))
	require.NoError(t, err)

	assert.NoError(t, schema.Validate(mustDoc(t, `<root><left>AB</left><right>4</right></root>`)))

	err = schema.Validate(mustDoc(t, `<root><left>ABCD</left><right>4</right></root>`))
	require.ErrorIs(t, err, xsd.ErrInvalid)
	assert.Contains(t, err.Error(), "longer than 3")

	err = schema.Validate(mustDoc(t, `<root><left>ab</left><right>4</right></root>`))
	require.ErrorIs(t, err, xsd.ErrInvalid)
	assert.Contains(t, err.Error(), "does not match pattern [A-Z]+")

	err = schema.Validate(mustDoc(t, `<root><left>A</left><right>0</right></root>`))
	require.ErrorIs(t, err, xsd.ErrInvalid)
	assert.Contains(t, err.Error(), "not positive")
}

func Test_ValidateFile_Returns_Three_States(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "library.xsd")
	validPath := filepath.Join(dir, "valid.xml")
	invalidPath := filepath.Join(dir, "invalid.xml")
	brokenPath := filepath.Join(dir, "broken.xml")
	emptyPath := filepath.Join(dir, "empty.xml")

	write := func(path, content string) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	write(schemaPath, shelfSchema)
	write(validPath, `<?xml version="1.0"?><library/>`)
	write(invalidPath, `<library><thing/></library>`)
	write(brokenPath, `<library>`)
	write(emptyPath, ``)

	reader := fs.NewReal()

	status, err := xsd.ValidateFile(reader, schemaPath, validPath)
	require.NoError(t, err)
	assert.Equal(t, xsd.StatusValid, status)

	status, err = xsd.ValidateFile(reader, schemaPath, invalidPath)
	require.ErrorIs(t, err, xsd.ErrInvalid)
	assert.Equal(t, xsd.StatusInvalid, status)

	status, err = xsd.ValidateFile(reader, schemaPath, brokenPath)
	require.ErrorIs(t, err, xsd.ErrDocument)
	assert.Equal(t, xsd.StatusError, status)

	status, err = xsd.ValidateFile(reader, schemaPath, emptyPath)
	require.ErrorIs(t, err, xsd.ErrDocument)
	assert.Equal(t, xsd.StatusError, status)

	status, err = xsd.ValidateFile(reader, schemaPath, filepath.Join(dir, "missing.xml"))
	require.ErrorIs(t, err, xsd.ErrDocument)
	assert.Equal(t, xsd.StatusError, status)

	status, err = xsd.ValidateFile(reader, filepath.Join(dir, "missing.xsd"), validPath)
	require.ErrorIs(t, err, xsd.ErrSchema)
	assert.Equal(t, xsd.StatusError, status)
}

func Test_ValidateTree_Checks_In_Memory_Document(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "library.xsd")
	require.NoError(t, os.WriteFile(schemaPath, []byte(shelfSchema), 0o644))

	doc := etree.NewDocument()
	root := doc.CreateElement("library")
	thing := root.CreateElement("thing")
	thing.CreateElement("name").SetText("a")
	thing.CreateElement("code").SetText("7")
	thing.CreateElement("state").SetText("Yes")

	status, err := xsd.ValidateTree(fs.NewReal(), schemaPath, doc)
	require.NoError(t, err)
	assert.Equal(t, xsd.StatusValid, status)

	thing.CreateElement("bogus")

	status, err = xsd.ValidateTree(fs.NewReal(), schemaPath, doc)
	require.Error(t, err)
	assert.Equal(t, xsd.StatusInvalid, status)
	assert.Equal(t, "invalid", status.String())
}
