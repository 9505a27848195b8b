package dispatch

import "html/template"

var templates = template.Must(template.New("emails").Parse(`
{{define "invite"}}<p>Hello {{.FullName}},</p>
<p>Your request for access to InvestHub has been approved.</p>
<p><a href="{{.Link}}">Set your password</a> to finish setting up your account.
This link expires on {{.ExpiresAt}} and can be used once.</p>{{end}}

{{define "rejection"}}<p>Hello {{.FullName}},</p>
<p>Your request for access to InvestHub was not approved.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}{{end}}

{{define "admin_alert"}}<p>A new access request is waiting for review.</p>
<p>{{.FullName}} &lt;{{.Email}}&gt;, request {{.RequestID}}</p>{{end}}
`))
