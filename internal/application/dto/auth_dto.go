package dto

// LoginRequest entrada para login (el tenant viene resuelto por middleware).
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// EmpresaResumen datos mínimos del tenant en respuestas de auth.
type EmpresaResumen struct {
	ID              string `json:"id"`
	NombreComercial string `json:"nombre_comercial"`
	Subdominio      string `json:"subdominio"`
}

// EmpleadoResumen datos del empleado en respuestas de auth (sin campos sensibles).
type EmpleadoResumen struct {
	ID             string  `json:"id"`
	Codigo         string  `json:"codigo"`
	Nombres        string  `json:"nombres"`
	Apellidos      string  `json:"apellidos"`
	Estado         string  `json:"estado"`
	DepartamentoID *string `json:"departamento_id,omitempty"`
	RolID          *string `json:"rol_id,omitempty"`
}

// LoginResponse salida de login: credencial bearer + contexto del tenant.
type LoginResponse struct {
	Token    string          `json:"token"`
	Empleado EmpleadoResumen `json:"empleado"`
	Empresa  EmpresaResumen  `json:"empresa"`
	Permisos []string        `json:"permisos"`
}

// CheckAuthResponse salida de whoami.
type CheckAuthResponse struct {
	UsuarioID string          `json:"usuario_id"`
	Username  string          `json:"username"`
	Empleado  EmpleadoResumen `json:"empleado"`
	Empresa   EmpresaResumen  `json:"empresa"`
}
