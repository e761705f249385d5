package acceso

// TablaNamespaces mapea un código de permiso a sus escrituras aceptadas: el
// código pelado y el código con cada prefijo de módulo. Se construye una vez en
// el arranque; el chequeo por petición queda en pruebas de pertenencia.
type TablaNamespaces struct {
	modulos []string
}

// NuevaTablaNamespaces fija los módulos aceptados como prefijo (p. ej.
// inventario, seguridad, ventas, compras).
func NuevaTablaNamespaces(modulos []string) *TablaNamespaces {
	return &TablaNamespaces{modulos: modulos}
}

// Variantes devuelve todas las escrituras bajo las que puede concederse un código.
func (t *TablaNamespaces) Variantes(codigo string) []string {
	out := make([]string, 0, len(t.modulos)+1)
	out = append(out, codigo)
	for _, m := range t.modulos {
		out = append(out, m+"."+codigo)
	}
	return out
}
