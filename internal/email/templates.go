package email

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	texttpl "text/template"
)

type Templates struct {
	ConfirmHTML *template.Template
	ConfirmTXT  *texttpl.Template
}

type ConfirmVars struct {
	FirstName string
	Link      string
	TTL       string
}

const defaultConfirmHTML = `<html>
<body>
  <p>Hola {{.FirstName}},</p>
  <p>Para confirmar tu cuenta hacé click en el siguiente enlace:</p>
  <p><a href="{{.Link}}">Confirmar mi email</a></p>
  <p>El enlace vence en {{.TTL}}.</p>
</body>
</html>`

const defaultConfirmTXT = `Hola {{.FirstName}},

Para confirmar tu cuenta abrí este enlace:

{{.Link}}

El enlace vence en {{.TTL}}.`

// LoadTemplates carga los templates desde dir; si dir es vacío (o falta un
// archivo) usa los defaults embebidos.
func LoadTemplates(dir string) (*Templates, error) {
	html := defaultConfirmHTML
	txt := defaultConfirmTXT

	if dir != "" {
		if b, err := os.ReadFile(filepath.Join(dir, "confirm_email.html")); err == nil {
			html = string(b)
		}
		if b, err := os.ReadFile(filepath.Join(dir, "confirm_email.txt")); err == nil {
			txt = string(b)
		}
	}

	ht, err := template.New("confirm_html").Parse(html)
	if err != nil {
		return nil, err
	}
	tt, err := texttpl.New("confirm_txt").Parse(txt)
	if err != nil {
		return nil, err
	}
	return &Templates{ConfirmHTML: ht, ConfirmTXT: tt}, nil
}

// RenderConfirm devuelve el cuerpo HTML y texto del mail de confirmación.
func (t *Templates) RenderConfirm(vars ConfirmVars) (htmlBody, textBody string, err error) {
	var hb, tb bytes.Buffer
	if err := t.ConfirmHTML.Execute(&hb, vars); err != nil {
		return "", "", err
	}
	if err := t.ConfirmTXT.Execute(&tb, vars); err != nil {
		return "", "", err
	}
	return hb.String(), tb.String(), nil
}
