package dto

import "encoding/json"

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"` // mensajes de validación campo a campo
}

// Opcional distingue en un PATCH entre campo ausente, null explícito y valor
// explícito (semántica de tres valores para FKs opcionales como rol o
// departamento). Definido=false → no tocar; Definido=true y Valor=nil → limpiar.
type Opcional[T any] struct {
	Definido bool
	Valor    *T
}

// UnmarshalJSON solo se invoca cuando la clave está presente en el body, por lo
// que su sola ejecución marca el campo como definido.
func (o *Opcional[T]) UnmarshalJSON(b []byte) error {
	o.Definido = true
	if string(b) == "null" {
		o.Valor = nil
		return nil
	}
	return json.Unmarshal(b, &o.Valor)
}
