package smtp

import (
	"html"
	"strings"
)

const NewsletterConfirmSubject = "Confirmez votre inscription à la newsletter"

const NewsletterConfirmTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
  <meta charset="UTF-8">
  <title>Confirmez votre inscription</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f7f7f7; padding: 20px;">
  <table align="center" width="600" cellpadding="0" cellspacing="0"
         style="background-color: #ffffff; border-radius: 8px; padding: 20px;">
    <tr>
      <td style="text-align: center; font-size: 20px; font-weight: bold; color: #333;">
        {{SITE_NAME}} | Newsletter
      </td>
    </tr>
    <tr>
      <td style="padding: 20px; text-align: center; font-size: 16px; color: #555;">
        Merci pour votre inscription. Cliquez sur le bouton ci-dessous pour la confirmer :
      </td>
    </tr>
    <tr>
      <td style="text-align: center; padding: 20px;">
        <a href="{{CONFIRM_URL}}"
           style="display: inline-block; font-size: 16px; font-weight: bold; color: #ffffff;
                  background-color: #2c3e50; padding: 12px 24px; border-radius: 6px;
                  text-decoration: none;">
          Confirmer mon inscription
        </a>
      </td>
    </tr>
    <tr>
      <td style="padding: 20px; text-align: center; font-size: 13px; color: #999;">
        Si vous n'êtes pas à l'origine de cette demande, ignorez simplement cet e-mail.<br>
        Se désinscrire : <a href="{{UNSUBSCRIBE_URL}}" style="color: #999;">{{UNSUBSCRIBE_URL}}</a>
      </td>
    </tr>
  </table>
</body>
</html>`

const AppointmentNotifySubject = "Nouvelle demande de rendez-vous"

const AppointmentNotifyTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
  <meta charset="UTF-8">
  <title>Nouvelle demande de rendez-vous</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f7f7f7; padding: 20px;">
  <table align="center" width="600" cellpadding="0" cellspacing="0"
         style="background-color: #ffffff; border-radius: 8px; padding: 20px;">
    <tr>
      <td style="text-align: center; font-size: 20px; font-weight: bold; color: #333;">
        Nouvelle demande de rendez-vous
      </td>
    </tr>
    <tr>
      <td style="padding: 20px; font-size: 15px; color: #555; line-height: 1.6;">
        <strong>Date :</strong> {{DATE}} à {{TIME}} ({{DURATION}} min)<br>
        <strong>Nom :</strong> {{NAME}}<br>
        <strong>E-mail :</strong> {{EMAIL}}<br>
        <strong>Téléphone :</strong> {{PHONE}}
      </td>
    </tr>
    <tr>
      <td style="padding: 0 20px 20px; font-size: 15px; color: #555; white-space: pre-wrap;">{{MESSAGE}}</td>
    </tr>
    <tr>
      <td style="padding: 20px; text-align: center; font-size: 13px; color: #999;">
        La demande est en attente de confirmation dans l'espace d'administration.
      </td>
    </tr>
  </table>
</body>
</html>`

// Render fills {{KEY}} placeholders. Values are HTML-escaped; unknown
// placeholders are left as they are.
func Render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", html.EscapeString(v))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
