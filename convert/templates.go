package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"famchron/config"
	"famchron/gramps"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	RootID     string
	GivenName  string
	Surname    string
	SourceFile string
}

func expandTemplate(root *gramps.Person, src string, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		RootID:     root.ID,
		GivenName:  root.Name.First,
		Surname:    root.Name.Surname,
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
