package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
)

// Values are available to container stylesheet name template.
type Values struct {
	Dir  string // directory of base output
	Name string // file name of base output
	Stem string // file name without extension
	Ext  string
}

func expandContainersTemplate(field, out string) (string, error) {
	tmpl, err := template.New("containers").Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse containers template: %w", err)
	}

	dir, name := filepath.Split(out)
	ext := filepath.Ext(name)
	values := Values{
		Dir:  filepath.Clean(dir),
		Name: name,
		Stem: strings.TrimSuffix(name, ext),
		Ext:  ext,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	res := strings.TrimSpace(buf.String())
	if len(res) == 0 {
		return "", fmt.Errorf("containers template expanded to nothing")
	}
	if !filepath.IsAbs(res) {
		res = filepath.Join(dir, res)
	}
	return res, nil
}
