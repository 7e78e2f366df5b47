package mailer

import "html/template"

const (
	TemplateOrderKickoff  = "order_kickoff"
	TemplateContactAck    = "contact_ack"
	TemplateContactNotify = "contact_notify"
)

var subjects = map[string]string{
	TemplateOrderKickoff:  "Your order is confirmed — next steps inside",
	TemplateContactAck:    "We received your message",
	TemplateContactNotify: "New contact form submission",
}

var bodies = map[string]*template.Template{
	TemplateOrderKickoff: template.Must(template.New(TemplateOrderKickoff).Parse(`
<p>Hi {{.Name}},</p>
<p>Thanks for your purchase of the <strong>{{.PackageName}}</strong> package.</p>
<p>We have started preparing your deliverables and will be in touch shortly
with scheduling details.</p>
<p>— The Brightharbor team</p>`)),

	TemplateContactAck: template.Must(template.New(TemplateContactAck).Parse(`
<p>Hi {{.Name}},</p>
<p>Thanks for reaching out. We read every message and will get back to you
within one business day.</p>
<p>— The Brightharbor team</p>`)),

	TemplateContactNotify: template.Must(template.New(TemplateContactNotify).Parse(`
<p>New contact form submission:</p>
<ul>
<li>Name: {{.Name}}</li>
<li>Email: {{.Email}}</li>
{{if .Phone}}<li>Phone: {{.Phone}}</li>{{end}}
{{if .Topic}}<li>Topic: {{.Topic}}</li>{{end}}
<li>Source: {{.Source}}</li>
</ul>
<p>{{.Message}}</p>`)),
}
