package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
)

// Message is a text and HTML alternative mail.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// AccountNoticeSubject is the subject line of new-account mails.
const AccountNoticeSubject = "[RemoteTM] New Account"

// AccountNotice is the data quoted in a new-account mail.
type AccountNotice struct {
	Name     string
	UserID   string
	Password string
	Instance string
}

var noticeText = template.Must(template.New("text").Parse(`
Dear {{.Name}},

A new account has been created for you in RemoteTM.

Please login to the server using the credentials provided below.

  RemoteTM Server: {{.Instance}}
  User Name: {{.UserID}}
  Password: {{.Password}}

Thanks for using RemoteTM.

`))

var noticeHTML = htmltemplate.Must(htmltemplate.New("html").Parse(
	`<p>Dear {{.Name}},</p>` +
		`<p>A new account has been created for you in RemoteTM.</p>` +
		`<p>Please login to the server using the credentials provided below.</p>` +
		`<pre>  RemoteTM Server: {{.Instance}}
  User Name: {{.UserID}}
  Password: {{.Password}}</pre>` +
		`<p>Thanks for using RemoteTM.</p>`))

// NewAccountNotice renders the new-account message for one recipient.
func NewAccountNotice(from, to string, n AccountNotice) (Message, error) {
	var text, html bytes.Buffer
	if err := noticeText.Execute(&text, n); err != nil {
		return Message{}, err
	}
	if err := noticeHTML.Execute(&html, n); err != nil {
		return Message{}, err
	}
	return Message{
		From:    from,
		To:      []string{to},
		Subject: AccountNoticeSubject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// Bytes encodes m as a multipart/alternative RFC 5322 message.
func (m Message) Bytes(now time.Time) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, part := range []struct{ ctype, content string }{
		{"text/plain; charset=UTF-8", m.Text},
		{"text/html; charset=UTF-8", m.HTML},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.ctype},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(part.content)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&out, "%s: %s\r\n", k, v) }
	header("From", m.From)
	header("To", strings.Join(m.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@remotetm>", uuid.NewString()))
	header("MIME-Version", "1.0")
	header("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	out.WriteString("\r\n")
	out.Write(body.Bytes())

	return out.Bytes(), nil
}
