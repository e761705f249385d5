package mail

import (
	"fmt"
	"html"
	"strings"

	gomail "github.com/go-mail/mail"
	"github.com/tu-usuario/gestion-pro/internal/application/activacion"
	"github.com/tu-usuario/gestion-pro/pkg/config"
	"github.com/tu-usuario/gestion-pro/pkg/logger"
)

var _ activacion.Notificador = (*SMTPSender)(nil)
var _ activacion.Notificador = (*LogSender)(nil)

// SMTPSender entrega notificaciones por SMTP con go-mail. Envía
// multipart/alternative (texto plano + HTML simple).
type SMTPSender struct {
	cfg config.SMTPConfig
	log *logger.Logger
}

// NewSMTPSender construye el sender con la configuración SMTP.
func NewSMTPSender(cfg config.SMTPConfig, log *logger.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: log}
}

// Enviar arma y entrega el correo. El caller decide si el fallo es fatal;
// en este backend nunca lo es.
func (s *SMTPSender) Enviar(n activacion.Notificacion) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", n.Destinatario)
	m.SetHeader("Subject", n.Asunto)
	m.SetBody("text/plain", cuerpoTexto(n))
	m.AddAlternative("text/html", cuerpoHTML(n))

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		s.log.Error().Err(err).
			Str("destinatario", n.Destinatario).
			Str("asunto", n.Asunto).
			Msg("fallo al enviar correo")
		return fmt.Errorf("enviar correo: %w", err)
	}

	s.log.Info().Str("destinatario", n.Destinatario).Str("asunto", n.Asunto).Msg("correo enviado")
	return nil
}

func cuerpoTexto(n activacion.Notificacion) string {
	var b strings.Builder
	b.WriteString(n.Titulo + "\n\n")
	if n.Subtitulo != "" {
		b.WriteString(n.Subtitulo + "\n\n")
	}
	b.WriteString(n.Mensaje + "\n")
	if n.AccionURL != "" {
		b.WriteString("\n" + n.AccionURL + "\n")
	}
	return b.String()
}

func cuerpoHTML(n activacion.Notificacion) string {
	var b strings.Builder
	b.WriteString("<h2>" + html.EscapeString(n.Titulo) + "</h2>")
	if n.Subtitulo != "" {
		b.WriteString("<h4>" + html.EscapeString(n.Subtitulo) + "</h4>")
	}
	b.WriteString("<p>" + html.EscapeString(n.Mensaje) + "</p>")
	if n.AccionURL != "" {
		b.WriteString(`<p><a href="` + n.AccionURL + `">Continuar</a></p>`)
	}
	return b.String()
}

// LogSender notificador de desarrollo: registra el contenido en lugar de
// enviarlo. Se usa cuando SMTP no está configurado.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender construye el sender de log.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

// Enviar registra la notificación y devuelve nil.
func (s *LogSender) Enviar(n activacion.Notificacion) error {
	s.log.Info().
		Str("destinatario", n.Destinatario).
		Str("asunto", n.Asunto).
		Str("accion_url", n.AccionURL).
		Msg("notificación (SMTP no configurado, solo log)")
	return nil
}
