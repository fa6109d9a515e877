package modelstore

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/mvp-joe/project-hoist/internal/model"
)

const (
	xmiNamespace   = "http://www.omg.org/XMI"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	ecoreNamespace = "http://www.eclipse.org/emf/2002/Ecore"

	ecoreDataTypePrefix = "ecore:EDataType " + ecoreNamespace + "#//"
	localRefPrefix      = "#//"

	kindClass     = "ecore:EClass"
	kindAttribute = "ecore:EAttribute"
	kindReference = "ecore:EReference"
)

// prefixes maps namespaces, by URI or by undeclared prefix, to the prefix
// written on output.
var prefixes = map[string]string{
	xmiNamespace:   "xmi",
	xsiNamespace:   "xsi",
	ecoreNamespace: "ecore",
	"xmi":          "xmi",
	"xsi":          "xsi",
	"ecore":        "ecore",
}

// xmiRaw is an element kept as written: name, attributes and inner XML.
type xmiRaw struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   []byte     `xml:",innerxml"`
}

// Decoding side. Tags without a namespace match any prefix.

type xmiPackage struct {
	Name        string          `xml:"name,attr"`
	NsURI       string          `xml:"nsURI,attr"`
	NsPrefix    string          `xml:"nsPrefix,attr"`
	Attrs       []xml.Attr      `xml:",any,attr"`
	Classifiers []xmiClassifier `xml:"eClassifiers"`
	Other       []xmiRaw        `xml:",any"`
}

type xmiClassifier struct {
	Type       string         `xml:"type,attr"`
	Name       string         `xml:"name,attr"`
	Abstract   bool           `xml:"abstract,attr"`
	Interface  bool           `xml:"interface,attr"`
	SuperTypes string         `xml:"eSuperTypes,attr"`
	Attrs      []xml.Attr     `xml:",any,attr"`
	Features   []xmiTypedElem `xml:"eStructuralFeatures"`
	Operations []xmiTypedElem `xml:"eOperations"`
	Other      []xmiRaw       `xml:",any"`
	Inner      []byte         `xml:",innerxml"`
}

type xmiTypedElem struct {
	Type  string     `xml:"type,attr"`
	Name  string     `xml:"name,attr"`
	EType string     `xml:"eType,attr"`
	Attrs []xml.Attr `xml:",any,attr"`
	Inner []byte     `xml:",innerxml"`
}

// Encoding side. Prefixed names are written literally.

type xmiPackageOut struct {
	XMLName     xml.Name           `xml:"ecore:EPackage"`
	XMIVersion  string             `xml:"xmi:version,attr"`
	XmlnsXMI    string             `xml:"xmlns:xmi,attr"`
	XmlnsXSI    string             `xml:"xmlns:xsi,attr"`
	XmlnsEcore  string             `xml:"xmlns:ecore,attr"`
	Name        string             `xml:"name,attr"`
	NsURI       string             `xml:"nsURI,attr,omitempty"`
	NsPrefix    string             `xml:"nsPrefix,attr,omitempty"`
	Attrs       []xml.Attr         `xml:",any,attr"`
	Other       []xmiRaw           `xml:",any"`
	Classifiers []xmiClassifierOut `xml:"eClassifiers"`
}

// xmiClassifierOut serves classes and opaque classifiers. An opaque
// classifier carries its children in Inner and nothing in the slices.
type xmiClassifierOut struct {
	Type       string            `xml:"xsi:type,attr"`
	Name       string            `xml:"name,attr"`
	Abstract   bool              `xml:"abstract,attr,omitempty"`
	Interface  bool              `xml:"interface,attr,omitempty"`
	SuperTypes string            `xml:"eSuperTypes,attr,omitempty"`
	Attrs      []xml.Attr        `xml:",any,attr"`
	Inner      []byte            `xml:",innerxml"`
	Other      []xmiRaw          `xml:",any"`
	Operations []xmiOperationOut `xml:"eOperations"`
	Features   []xmiFeatureOut   `xml:"eStructuralFeatures"`
}

type xmiOperationOut struct {
	Name  string     `xml:"name,attr"`
	EType string     `xml:"eType,attr,omitempty"`
	Attrs []xml.Attr `xml:",any,attr"`
	Inner []byte     `xml:",innerxml"`
}

type xmiFeatureOut struct {
	Type  string     `xml:"xsi:type,attr"`
	Name  string     `xml:"name,attr"`
	EType string     `xml:"eType,attr,omitempty"`
	Attrs []xml.Attr `xml:",any,attr"`
	Inner []byte     `xml:",innerxml"`
}

// Extensions attached to model elements loaded from Ecore.

type ecorePackage struct {
	Attrs  []xml.Attr
	Other  []xmiRaw
	Opaque []opaqueClassifier
}

// opaqueClassifier is a data type, enum or other non-class classifier. After
// names the class it followed in the source, or "" when it came first.
type opaqueClassifier struct {
	After string
	Out   xmiClassifierOut
}

type ecoreClass struct {
	Attrs []xml.Attr
	Other []xmiRaw
}

type ecoreMember struct {
	Kind  string // xsi:type of a structural feature
	EType string // eType as written
	Attrs []xml.Attr
	Inner []byte
}

// EcoreCodec reads and writes Ecore XMI packages. EClass classifiers become
// model classifiers; their attributes and references both map to model
// attributes. Everything else (data types, enums, annotations, parameters,
// bounds, containment) is kept on the elements' extensions and written back
// on save.
type EcoreCodec struct{}

// Decode parses an EPackage document.
func (EcoreCodec) Decode(r io.Reader) (*model.ClassModel, error) {
	var pkg xmiPackage
	if err := xml.NewDecoder(r).Decode(&pkg); err != nil {
		return nil, fmt.Errorf("invalid ecore document: %w", err)
	}

	m := model.New(pkg.Name)
	m.NsURI = pkg.NsURI
	m.NsPrefix = pkg.NsPrefix
	ext := &ecorePackage{
		Attrs: packageAttrs(pkg.Attrs),
		Other: normalizeRaws(pkg.Other),
	}
	m.Ext = ext

	last := ""
	for _, xc := range pkg.Classifiers {
		if !strings.HasSuffix(xc.Type, "EClass") {
			ext.Opaque = append(ext.Opaque, opaqueClassifier{
				After: last,
				Out: xmiClassifierOut{
					Type:       xc.Type,
					Name:       xc.Name,
					Abstract:   xc.Abstract,
					Interface:  xc.Interface,
					SuperTypes: xc.SuperTypes,
					Attrs:      normalizeAttrs(xc.Attrs),
					Inner:      xc.Inner,
				},
			})
			continue
		}

		c := &model.Classifier{
			Name:      xc.Name,
			Abstract:  xc.Abstract,
			Interface: xc.Interface,
			Ext:       &ecoreClass{Attrs: normalizeAttrs(xc.Attrs), Other: normalizeRaws(xc.Other)},
		}
		for _, ref := range strings.Fields(xc.SuperTypes) {
			c.SuperTypes = append(c.SuperTypes, typeName(ref))
		}
		for _, f := range xc.Features {
			c.Attributes = append(c.Attributes, &model.Attribute{
				Name: f.Name,
				Type: model.TypeRef{Name: typeName(f.EType)},
				Ext:  newMember(f),
			})
		}
		for _, o := range xc.Operations {
			c.Operations = append(c.Operations, &model.Operation{
				Name: o.Name,
				Type: model.TypeRef{Name: typeName(o.EType)},
				Ext:  newMember(o),
			})
		}
		if err := m.Add(c); err != nil {
			return nil, err
		}
		last = c.Name
	}
	return m, nil
}

func newMember(e xmiTypedElem) *ecoreMember {
	return &ecoreMember{
		Kind:  e.Type,
		EType: e.EType,
		Attrs: normalizeAttrs(e.Attrs),
		Inner: e.Inner,
	}
}

// Encode writes m as an EPackage document.
func (EcoreCodec) Encode(w io.Writer, m *model.ClassModel) error {
	out := xmiPackageOut{
		XMIVersion: "2.0",
		XmlnsXMI:   xmiNamespace,
		XmlnsXSI:   xsiNamespace,
		XmlnsEcore: ecoreNamespace,
		Name:       m.Name,
		NsURI:      m.NsURI,
		NsPrefix:   m.NsPrefix,
	}

	pkg, _ := m.Ext.(*ecorePackage)
	if pkg == nil {
		pkg = &ecorePackage{}
	}
	out.Attrs = pkg.Attrs
	out.Other = pkg.Other

	dataTypes := make(map[string]bool, len(pkg.Opaque))
	opaqueAfter := make(map[string][]xmiClassifierOut)
	for _, o := range pkg.Opaque {
		dataTypes[o.Out.Name] = true
		opaqueAfter[o.After] = append(opaqueAfter[o.After], o.Out)
	}

	out.Classifiers = append(out.Classifiers, opaqueAfter[""]...)
	for _, c := range m.Classifiers() {
		out.Classifiers = append(out.Classifiers, encodeClass(c, dataTypes))
		out.Classifiers = append(out.Classifiers, opaqueAfter[c.Name]...)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode ecore document: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encodeClass(c *model.Classifier, dataTypes map[string]bool) xmiClassifierOut {
	xc := xmiClassifierOut{
		Type:      kindClass,
		Name:      c.Name,
		Abstract:  c.Abstract,
		Interface: c.Interface,
	}
	if ext, ok := c.Ext.(*ecoreClass); ok {
		xc.Attrs = ext.Attrs
		xc.Other = ext.Other
	}

	refs := make([]string, len(c.SuperTypes))
	for i, st := range c.SuperTypes {
		refs[i] = localRefPrefix + st
	}
	xc.SuperTypes = strings.Join(refs, " ")

	for _, o := range c.Operations {
		op := xmiOperationOut{Name: o.Name, EType: typeRef(o.Type)}
		if ext, ok := o.Ext.(*ecoreMember); ok {
			op.EType = ext.eType(o.Type)
			op.Attrs = ext.Attrs
			op.Inner = ext.Inner
		}
		xc.Operations = append(xc.Operations, op)
	}
	for _, a := range c.Attributes {
		f := xmiFeatureOut{Type: featureKind(a.Type, dataTypes), Name: a.Name, EType: typeRef(a.Type)}
		if ext, ok := a.Ext.(*ecoreMember); ok {
			if ext.Kind != "" {
				f.Type = ext.Kind
			}
			f.EType = ext.eType(a.Type)
			f.Attrs = ext.Attrs
			f.Inner = ext.Inner
		}
		xc.Features = append(xc.Features, f)
	}
	return xc
}

// eType returns the reference as written when it still names t.
func (e *ecoreMember) eType(t model.TypeRef) string {
	if e.EType != "" && typeName(e.EType) == t.Name {
		return e.EType
	}
	return typeRef(t)
}

// featureKind picks the feature kind for an attribute with no source kind:
// primitives and the package's own data types and enums are attributes.
func featureKind(t model.TypeRef, dataTypes map[string]bool) string {
	if t.IsPrimitive() || dataTypes[t.Name] {
		return kindAttribute
	}
	return kindReference
}

// typeName extracts the classifier name from an eType or eSuperTypes
// reference such as "#//Engine" or "ecore:EDataType ...Ecore#//EInt".
func typeName(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndex(ref, localRefPrefix); i >= 0 {
		return ref[i+len(localRefPrefix):]
	}
	return ref
}

// typeRef renders a type as an eType reference.
func typeRef(t model.TypeRef) string {
	switch {
	case t.IsZero():
		return ""
	case t.IsPrimitive():
		return ecoreDataTypePrefix + t.Name
	default:
		return localRefPrefix + t.Name
	}
}

// normalizeAttrs rewrites namespaced attributes to literal prefixed names so
// the encoder writes them as they were read.
func normalizeAttrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]xml.Attr, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, xml.Attr{Name: literalName(a.Name), Value: a.Value})
	}
	return out
}

// packageAttrs keeps the root attributes not written by Encode itself,
// including namespace declarations beyond xmi, xsi and ecore.
func packageAttrs(attrs []xml.Attr) []xml.Attr {
	var out []xml.Attr
	for _, a := range attrs {
		switch {
		case a.Name.Space == "xmlns":
			if _, known := prefixes[a.Name.Local]; known {
				continue
			}
			out = append(out, xml.Attr{Name: xml.Name{Local: "xmlns:" + a.Name.Local}, Value: a.Value})
		case a.Name.Local == "version" && prefixes[a.Name.Space] == "xmi":
			continue
		default:
			out = append(out, xml.Attr{Name: literalName(a.Name), Value: a.Value})
		}
	}
	return out
}

func normalizeRaws(raws []xmiRaw) []xmiRaw {
	for i := range raws {
		raws[i].XMLName = literalName(raws[i].XMLName)
		raws[i].Attrs = normalizeAttrs(raws[i].Attrs)
	}
	return raws
}

func literalName(n xml.Name) xml.Name {
	if prefix, ok := prefixes[n.Space]; ok {
		return xml.Name{Local: prefix + ":" + n.Local}
	}
	return n
}
