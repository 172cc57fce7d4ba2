// Package report renders a stored assessment result for people to read.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/ashureev/assessment-relay/internal/domain"
)

const (
	// Title is the heading of every report.
	Title = "Relatório de Autoavaliação Comportamental Infantil"

	disclaimer = "Este relatório é apenas educativo e informativo. Não substitui avaliação médica ou psicológica profissional."
	adviceLine = "Em caso de dúvidas ou preocupações, consulte um profissional qualificado."
	dateLayout = "02/01/2006"
)

// Report is the data a rendered report shows.
type Report struct {
	Result      domain.StoredResult
	GeneratedAt time.Time
}

// New builds a report for r generated at now.
func New(r *domain.StoredResult, now time.Time) Report {
	return Report{Result: *r, GeneratedAt: now}
}

// Date returns the generation date as dd/mm/yyyy.
func (r Report) Date() string {
	return r.GeneratedAt.Format(dateLayout)
}

// ChildDisplayName returns the child's name or a placeholder.
func (r Report) ChildDisplayName() string {
	if name := strings.TrimSpace(r.Result.ChildName); name != "" {
		return name
	}
	return "Não informado"
}

// AttachmentName returns the file name used when the report is attached to an email.
func AttachmentName(childName, ext string) string {
	name := strings.Join(strings.Fields(childName), "_")
	if name == "" {
		return "Relatorio." + ext
	}
	return fmt.Sprintf("Relatorio_%s.%s", name, ext)
}

var (
	documentTmpl = template.Must(template.New("document").Parse(documentHTML))
	emailTmpl    = template.Must(template.New("email").Parse(emailHTML))
)

type templateData struct {
	Report
	Title      string
	Disclaimer string
	Advice     string
}

func newTemplateData(r Report) templateData {
	return templateData{Report: r, Title: Title, Disclaimer: disclaimer, Advice: adviceLine}
}

// RenderHTML renders the full report document.
func RenderHTML(r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, newTemplateData(r)); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderEmail renders the summary that goes in the email body.
func RenderEmail(r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := emailTmpl.Execute(&buf, newTemplateData(r)); err != nil {
		return nil, fmt.Errorf("render email html: %w", err)
	}
	return buf.Bytes(), nil
}

const documentHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 40px; color: #333; }
    .header { text-align: center; border-bottom: 3px solid #1976d2; padding-bottom: 20px; margin-bottom: 30px; }
    h1 { color: #1565c0; margin: 0; }
    .info-section { background: #f5f5f5; padding: 20px; border-radius: 8px; margin-bottom: 20px; }
    .result-box { background: #5c6bc0; color: white; padding: 30px; border-radius: 12px; text-align: center; margin: 30px 0; }
    .score { font-size: 48px; font-weight: bold; margin: 10px 0; }
    .category { font-size: 24px; margin: 10px 0; }
    .explanation { background: #fff3cd; border-left: 4px solid #ffc107; padding: 20px; margin: 20px 0; border-radius: 4px; }
    .footer { text-align: center; margin-top: 40px; padding-top: 20px; border-top: 1px solid #ddd; font-size: 12px; color: #666; }
  </style>
</head>
<body>
  <div class="header"><h1>{{.Title}}</h1></div>
  <div class="info-section">
    <p><strong>Responsável:</strong> {{.Result.GuardianName}}</p>
    <p><strong>Criança:</strong> {{.ChildDisplayName}}</p>
    <p><strong>Idade:</strong> {{.Result.ChildAge}} anos</p>
    <p><strong>Data:</strong> {{.Date}}</p>
  </div>
  <div class="result-box">
    <div class="score">{{.Result.Score}} pontos</div>
    <div class="category">{{.Result.TierLabel}}</div>
  </div>
  <div class="explanation">
    <h3>Interpretação do Resultado</h3>
    <p>{{.Result.Message}}</p>
  </div>
  <div class="footer">
    <p><strong>Aviso Importante:</strong></p>
    <p>{{.Disclaimer}}</p>
    <p>{{.Advice}}</p>
  </div>
</body>
</html>
`

const emailHTML = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1565c0;">Olá, {{.Result.GuardianName}}!</h2>
  <p>Seu relatório da <strong>Autoavaliação Comportamental Infantil</strong> está pronto!</p>
  <p>O relatório completo está anexado a este e-mail.</p>
  <div style="background: #e3f2fd; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="margin-top: 0; color: #1565c0;">Resumo do Resultado:</h3>
    <p><strong>Criança:</strong> {{.ChildDisplayName}}</p>
    <p><strong>Pontuação:</strong> {{.Result.Score}} pontos</p>
    <p><strong>Categoria:</strong> {{.Result.TierLabel}}</p>
  </div>
  <div style="background: #fff3cd; border-left: 4px solid #ffc107; padding: 12px; margin-top: 20px;">
    <p style="margin: 0; font-size: 14px;"><strong>Atenção:</strong> Este conteúdo é educativo e não substitui avaliação médica ou psicológica profissional.</p>
  </div>
  <p style="margin-top: 20px; font-size: 12px; color: #666;">Este é um e-mail automático. Por favor, não responda.</p>
</div>
`
