// internal/notification/templates.go

package notification

import (
	"bytes"
	"html/template"
)

const matchEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>You have a new roommate match</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h1>It's a match!</h1>
    <p>Hi {{.RecipientName}},</p>
    <p>You and <strong>{{.OtherName}}</strong> both liked each other{{if .OtherLocation}} ({{.OtherLocation}}){{end}}.</p>
    {{if .OtherBio}}<blockquote>{{.OtherBio}}</blockquote>{{end}}
    <p>Open the app to say hello and start planning your place.</p>
</body>
</html>
`

var matchTemplate = template.Must(template.New("match").Parse(matchEmailTemplate))

// MatchEmailData fills the match email.
type MatchEmailData struct {
	RecipientName string
	OtherName     string
	OtherLocation string
	OtherBio      string
}

// RenderMatchEmail returns the HTML and plain text bodies.
func RenderMatchEmail(data MatchEmailData) (string, string, error) {
	var buf bytes.Buffer
	if err := matchTemplate.Execute(&buf, data); err != nil {
		return "", "", err
	}

	plain := "Hi " + data.RecipientName + ",\n\nYou and " + data.OtherName +
		" both liked each other. Open the app to say hello."
	return buf.String(), plain, nil
}
