package dto

// VerificarTokenResponse salida del GET de verificación: datos de presentación
// del empleado y tiempo restante. Nunca distingue por qué un token no es válido.
type VerificarTokenResponse struct {
	Empleado        string `json:"empleado"` // nombre completo
	Empresa         string `json:"empresa"`
	MinutosRestantes int    `json:"minutos_restantes"`
}

// ActivarCuentaRequest entrada del POST de activación.
type ActivarCuentaRequest struct {
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmacion string `json:"password_confirmacion"`
}

// ActivacionResponse salida de la activación: credencial para ingresar de
// inmediato. Token puede venir vacío si la emisión posterior al commit falló;
// la activación en sí ya quedó aplicada.
type ActivacionResponse struct {
	Token    string `json:"token,omitempty"`
	Username string `json:"username"`
	Mensaje  string `json:"mensaje"`
}

// SolicitarOTPRequest emisión de OTP por soporte (privilegiada).
type SolicitarOTPRequest struct {
	EmpleadoID string `json:"empleado_id"`
}

// SolicitarResetRequest solicitud de restablecimiento por enlace, iniciada por
// el propio usuario. La respuesta es uniforme: nunca revela si la cuenta existe.
type SolicitarResetRequest struct {
	Username string `json:"username"`
}

// RestablecerTokenRequest restablecimiento de password vía token de enlace.
type RestablecerTokenRequest struct {
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmacion string `json:"password_confirmacion"`
}

// RestablecerOTPRequest restablecimiento de password vía código OTP.
type RestablecerOTPRequest struct {
	Username             string `json:"username"`
	Codigo               string `json:"codigo"`
	Password             string `json:"password"`
	PasswordConfirmacion string `json:"password_confirmacion"`
}
