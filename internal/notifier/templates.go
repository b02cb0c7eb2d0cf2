package notifier

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"game_store_backend/internal/notify"
)

const layoutHTML = `{{define "layout"}}<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<div style="background: {{.Color}}; padding: 20px; text-align: center;"><h1 style="color: white; margin: 0;">{{.Heading}}</h1></div>
<div style="padding: 20px; background: #f9f9f9;">{{template "body" .Data}}</div>
<div style="padding: 15px; text-align: center; background: #333; color: white;"><p style="margin: 0;">Zarzis, Tunisie | Tel: 23 290 065</p></div>
</div>{{end}}`

type mailTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
	heading string
	color   string
}

var templateFuncs = texttemplate.FuncMap{
	"short": func(s string) string {
		if len(s) > 8 {
			return s[:8]
		}
		return s
	},
	"money":  func(v float64) string { return fmt.Sprintf("%.3f DT", v) },
	"status": statusLabel,
	"role": func(r string) string {
		if r == "owner" {
			return "Propriétaire"
		}
		return "Employé"
	},
}

func statusLabel(s string) string {
	switch s {
	case "pending":
		return "Nouvelle Demande"
	case "in_progress":
		return "En Cours"
	case "waiting_parts":
		return "En Attente de Pièces"
	case "completed":
		return "Terminée"
	case "cancelled":
		return "Annulée"
	}
	return s
}

func newMailTemplate(heading, color, subject, text, body string) mailTemplate {
	h := htmltemplate.Must(htmltemplate.New("layout").Funcs(htmltemplate.FuncMap(templateFuncs)).Parse(layoutHTML))
	htmltemplate.Must(h.New("body").Parse(body))
	return mailTemplate{
		subject: texttemplate.Must(texttemplate.New("subject").Funcs(templateFuncs).Parse(subject)),
		text:    texttemplate.Must(texttemplate.New("text").Funcs(templateFuncs).Parse(text)),
		html:    h,
		heading: heading,
		color:   color,
	}
}

var templates = map[string]mailTemplate{
	notify.KindBookingConfirmation: newMailTemplate(
		"Game Store Zarzis", "#764ba2",
		"Réservation Confirmée - Game Store Zarzis",
		"Réservation confirmée pour {{.ConsoleType}}{{if .PreferredDate}} le {{.PreferredDate}}{{end}}{{if .PreferredTime}} à {{.PreferredTime}}{{end}}. Nous vous attendons!",
		`<h2 style="color: #333;">Bonjour {{.ClientName}}!</h2>
<p>Votre réservation a été confirmée:</p>
<ul style="list-style: none; padding: 0;">
<li><strong>Console:</strong> {{.ConsoleType}}</li>
<li><strong>Type:</strong> {{.SessionType}}</li>
{{if .PreferredDate}}<li><strong>Date:</strong> {{.PreferredDate}}</li>{{end}}
{{if .PreferredTime}}<li><strong>Heure:</strong> {{.PreferredTime}}</li>{{end}}
</ul>
<p style="color: #666;">Nous vous attendons!</p>`,
	),
	notify.KindContactForm: newMailTemplate(
		"Nouveau Message", "#333",
		"Nouveau Message: {{.Subject}}",
		"Message de {{.FromName}} ({{.FromEmail}}):\n\n{{.Message}}",
		`<p><strong>De:</strong> {{.FromName}} ({{.FromEmail}})</p>
<p><strong>Sujet:</strong> {{.Subject}}</p>
<hr style="border: 1px solid #ddd;">
<div style="background: white; padding: 15px; border-radius: 5px; white-space: pre-wrap;">{{.Message}}</div>`,
	),
	notify.KindServiceRequest: newMailTemplate(
		"Service Update", "#4834d4",
		"[{{status .Status}}] Service #{{short .RequestID}}",
		"Service Update [{{status .Status}}] pour {{.ClientName}}. Appareil: {{.DeviceBrand}} {{.DeviceType}}. ID: {{short .RequestID}}",
		`<p><strong>ID:</strong> {{short .RequestID}}</p>
<p><strong>Status:</strong> {{status .Status}}</p>
<p><strong>Client:</strong> {{.ClientName}}</p>
<p><strong>Téléphone:</strong> {{.ClientPhone}}</p>
<hr style="border: 1px solid #ddd;">
<p><strong>Appareil:</strong> {{.DeviceBrand}} {{.DeviceType}}</p>
<div style="background: white; padding: 15px; border-radius: 5px;"><p><strong>Problème:</strong></p><p>{{.IssueDescription}}</p></div>`,
	),
	notify.KindSessionReceipt: newMailTemplate(
		"Reçu de Session", "#11998e",
		"Votre Reçu - Game Store Zarzis",
		"Reçu pour votre session. Date: {{.Date}}, Console: {{.ConsoleType}}, Durée: {{.Duration}}, Total: {{money .TotalAmount}}.",
		`<h2 style="color: #333;">Merci {{.ClientName}}!</h2>
<table style="width: 100%; background: white; border-radius: 5px; padding: 15px;">
<tr><td><strong>Date:</strong></td><td style="text-align: right;">{{.Date}}</td></tr>
<tr><td><strong>Console:</strong></td><td style="text-align: right;">{{.ConsoleType}}</td></tr>
<tr><td><strong>Durée:</strong></td><td style="text-align: right;">{{.Duration}}</td></tr>
<tr><td><strong>Total:</strong></td><td style="text-align: right;"><strong>{{money .TotalAmount}}</strong></td></tr>
{{if .PointsEarned}}<tr><td><strong>Points Gagnés:</strong></td><td style="text-align: right;">+{{.PointsEarned}}</td></tr>{{end}}
</table>
<p style="color: #666; text-align: center;">À bientôt!</p>`,
	),
	notify.KindStaffInvitation: newMailTemplate(
		"Bienvenue dans l'Équipe!", "#FDB931",
		"Invitation Staff - Game Store Zarzis",
		"Bienvenue! Vous avez été invité en tant que {{role .Role}}. Login: {{.Email}}, Mot de passe temporaire: {{.Password}}",
		`<p>Vous avez été invité à rejoindre l'équipe Game Store Zarzis en tant que <strong>{{role .Role}}</strong>.</p>
<div style="background: white; padding: 20px; border-radius: 5px; border-left: 5px solid #FDB931;">
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Mot de passe temporaire:</strong> {{.Password}}</p>
</div>
<p>Veuillez vous connecter et changer votre mot de passe dès que possible.</p>`,
	),
	notify.KindPasswordReset: newMailTemplate(
		"Game Store Zarzis", "#333",
		"{{if eq .Lang \"en\"}}Reset your password{{else}}Réinitialisation du mot de passe{{end}} - Game Store Zarzis",
		"{{if eq .Lang \"en\"}}Use this link to reset your password{{else}}Utilisez ce lien pour réinitialiser votre mot de passe{{end}}:\n\n{{.Link}}\n",
		`<p>{{if eq .Lang "en"}}Use the button below to choose a new password. The link expires soon.{{else}}Cliquez sur le bouton ci-dessous pour choisir un nouveau mot de passe. Le lien expire bientôt.{{end}}</p>
<div style="text-align: center; margin-top: 30px;"><a href="{{.Link}}" style="background: #333; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">{{if eq .Lang "en"}}Reset password{{else}}Réinitialiser{{end}}</a></div>`,
	),
}

// resetView adds the rendered link to a password reset payload.
type resetView struct {
	notify.PasswordReset
	Link string
}

// render fills the template registered for kind with data.
func render(kind string, data any) (subject, html, text string, err error) {
	t, ok := templates[kind]
	if !ok {
		return "", "", "", fmt.Errorf("no template for %q", kind)
	}
	var sb, tb, hb bytes.Buffer
	if err := t.subject.Execute(&sb, data); err != nil {
		return "", "", "", err
	}
	if err := t.text.Execute(&tb, data); err != nil {
		return "", "", "", err
	}
	view := struct {
		Heading, Color string
		Data           any
	}{t.heading, t.color, data}
	if err := t.html.ExecuteTemplate(&hb, "layout", view); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(sb.String()), hb.String(), tb.String(), nil
}
