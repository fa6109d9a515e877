package modelstore

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/mvp-joe/project-hoist/internal/model"
)

type yamlModel struct {
	Name        string           `yaml:"name"`
	NsURI       string           `yaml:"ns_uri,omitempty"`
	NsPrefix    string           `yaml:"ns_prefix,omitempty"`
	Classifiers []yamlClassifier `yaml:"classifiers"`
}

type yamlClassifier struct {
	Name       string       `yaml:"name"`
	Abstract   bool         `yaml:"abstract,omitempty"`
	Interface  bool         `yaml:"interface,omitempty"`
	SuperTypes []string     `yaml:"supertypes,omitempty"`
	Attributes []yamlMember `yaml:"attributes,omitempty"`
	Operations []yamlMember `yaml:"operations,omitempty"`
}

type yamlMember struct {
	Name string `yaml:"name"`
	Type string `yaml:"type,omitempty"`
}

// YAMLCodec reads and writes class models as YAML documents:
//
//	name: transport
//	classifiers:
//	  - name: Car
//	    supertypes: [Vehicle]
//	    attributes:
//	      - {name: speed, type: EInt}
//	    operations:
//	      - {name: drive}
type YAMLCodec struct{}

// Decode parses a YAML model document.
func (YAMLCodec) Decode(r io.Reader) (*model.ClassModel, error) {
	var doc yamlModel
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty model document")
		}
		return nil, fmt.Errorf("invalid yaml model: %w", err)
	}

	m := model.New(doc.Name)
	m.NsURI = doc.NsURI
	m.NsPrefix = doc.NsPrefix

	for _, yc := range doc.Classifiers {
		c := &model.Classifier{
			Name:       yc.Name,
			Abstract:   yc.Abstract,
			Interface:  yc.Interface,
			SuperTypes: append([]string(nil), yc.SuperTypes...),
		}
		for _, a := range yc.Attributes {
			c.Attributes = append(c.Attributes, &model.Attribute{Name: a.Name, Type: model.TypeRef{Name: a.Type}})
		}
		for _, o := range yc.Operations {
			c.Operations = append(c.Operations, &model.Operation{Name: o.Name, Type: model.TypeRef{Name: o.Type}})
		}
		if err := m.Add(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Encode writes m as a YAML document.
func (YAMLCodec) Encode(w io.Writer, m *model.ClassModel) error {
	doc := yamlModel{
		Name:     m.Name,
		NsURI:    m.NsURI,
		NsPrefix: m.NsPrefix,
	}
	for _, c := range m.Classifiers() {
		yc := yamlClassifier{
			Name:       c.Name,
			Abstract:   c.Abstract,
			Interface:  c.Interface,
			SuperTypes: c.SuperTypes,
		}
		for _, a := range c.Attributes {
			yc.Attributes = append(yc.Attributes, yamlMember{Name: a.Name, Type: a.Type.Name})
		}
		for _, o := range c.Operations {
			yc.Operations = append(yc.Operations, yamlMember{Name: o.Name, Type: o.Type.Name})
		}
		doc.Classifiers = append(doc.Classifiers, yc)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode yaml model: %w", err)
	}
	return enc.Close()
}
