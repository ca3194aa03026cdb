package usecase

import (
	"strings"

	"github.com/xavierca1/marketinghub/internal/entity"
)

var leadPlaceholders = map[string]func(*entity.Lead) string{
	"name":   func(l *entity.Lead) string { return l.Name },
	"email":  func(l *entity.Lead) string { return l.Email },
	"phone":  func(l *entity.Lead) string { return l.Phone },
	"status": func(l *entity.Lead) string { return string(l.Status) },
}

// RenderTemplate troca {{name}}, {{email}}, {{phone}} e {{status}} pelos
// valores do lead. Chaves diferenciam maiúsculas; placeholders desconhecidos
// ficam como estão e valores substituídos não são expandidos de novo.
func RenderTemplate(tmpl string, lead *entity.Lead) string {
	var b strings.Builder
	b.Grow(len(tmpl))

	rest := tmpl
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		closing := strings.Index(rest[open+2:], "}}")
		if closing < 0 {
			b.WriteString(rest)
			return b.String()
		}

		key := rest[open+2 : open+2+closing]
		b.WriteString(rest[:open])
		if get, ok := leadPlaceholders[key]; ok {
			b.WriteString(get(lead))
			rest = rest[open+2+closing+2:]
			continue
		}

		// Placeholder desconhecido: copia só um "{" e volta a procurar a
		// partir do próximo byte, senão "{{{name}}}" perde o {{name}}.
		b.WriteString("{")
		rest = rest[open+1:]
	}
}
