package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/signintech/gopdf"

	"healthbridge/internal/assessment"
)

// ErrNoDoctorChat is returned when no doctor chat is configured.
var ErrNoDoctorChat = errors.New("doctor chat id is not configured")

// DefaultFontPaths are tried after the configured font.
var DefaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

const fontName = "DejaVu"

type TelegramClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName, caption string) error
}

type Service struct {
	tgClient     TelegramClient
	doctorChatID int64
	fontPaths    []string
}

// NewService builds the emergency report sender. fontPath may be empty.
func NewService(tg TelegramClient, doctorChatID int64, fontPath string) *Service {
	paths := DefaultFontPaths
	if fontPath != "" {
		paths = append([]string{fontPath}, DefaultFontPaths...)
	}
	return &Service{
		tgClient:     tg,
		doctorChatID: doctorChatID,
		fontPaths:    paths,
	}
}

// SendEmergencyReport sends rec to the doctor chat as a PDF. Without a
// usable font it sends the same summary as a text message.
func (s *Service) SendEmergencyReport(ctx context.Context, rec assessment.Record) error {
	if s.doctorChatID == 0 {
		return ErrNoDoctorChat
	}

	logger := log.With().Str("record_id", rec.ID.String()).Int64("chat_id", s.doctorChatID).Logger()

	pdfData, err := s.renderPDF(rec)
	if err != nil {
		logger.Warn().Err(err).Msg("pdf report unavailable, sending text summary")
		if err := s.tgClient.SendMessage(ctx, s.doctorChatID, summaryText(rec)); err != nil {
			return fmt.Errorf("send text report: %w", err)
		}
		return nil
	}

	fileName := fmt.Sprintf("triage_%s.pdf", rec.ID.String())
	caption := fmt.Sprintf("EMERGENCY triage: patient %s", rec.PatientID)
	if err := s.tgClient.SendDocument(ctx, s.doctorChatID, pdfData, fileName, caption); err != nil {
		return fmt.Errorf("send pdf report: %w", err)
	}
	logger.Info().Int("bytes", len(pdfData)).Msg("pdf report sent")
	return nil
}

func (s *Service) renderPDF(rec assessment.Record) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	var fontErr error
	fontLoaded := false
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont(fontName, path); err != nil {
			fontErr = err
			continue
		}
		fontLoaded = true
		break
	}
	if !fontLoaded {
		return nil, fmt.Errorf("failed to load font for PDF: %w", fontErr)
	}

	if err := pdf.SetFont(fontName, "", 20); err != nil {
		return nil, err
	}
	pdf.Cell(nil, "Emergency Triage Report")
	pdf.Br(30)

	if err := pdf.SetFont(fontName, "", 12); err != nil {
		return nil, err
	}
	for _, line := range headerLines(rec) {
		pdf.Cell(nil, line)
		pdf.Br(15)
	}
	pdf.Br(10)

	for _, section := range sections(rec) {
		if len(section.lines) == 0 {
			continue
		}
		if err := pdf.SetFont(fontName, "", 14); err != nil {
			return nil, err
		}
		pdf.Cell(nil, section.title)
		pdf.Br(18)

		if err := pdf.SetFont(fontName, "", 11); err != nil {
			return nil, err
		}
		for _, line := range section.lines {
			wrapped, err := pdf.SplitText("- "+line, 500)
			if err != nil {
				wrapped = []string{"- " + line}
			}
			for _, l := range wrapped {
				pdf.Cell(nil, l)
				pdf.Br(13)
			}
		}
		pdf.Br(10)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

type section struct {
	title string
	lines []string
}

func headerLines(rec assessment.Record) []string {
	lines := []string{
		fmt.Sprintf("Date: %s", rec.CreatedAt.UTC().Format(time.RFC1123)),
		fmt.Sprintf("Patient: %s", rec.PatientID),
		fmt.Sprintf("Urgency: %s", strings.ToUpper(string(rec.OverallUrgency))),
	}
	if text := strings.TrimSpace(rec.Input.FreeText); text != "" {
		lines = append(lines, fmt.Sprintf("Patient said: %q", text))
	}
	if active := rec.Input.Active(); len(active) > 0 {
		names := make([]string, 0, len(active))
		for _, s := range active {
			names = append(names, s.Phrase())
		}
		lines = append(lines, "Selected symptoms: "+strings.Join(names, ", "))
	}
	if rec.Input.SeverityLevel != "" {
		lines = append(lines, "Declared severity: "+string(rec.Input.SeverityLevel))
	}
	if rec.Input.DurationBucket != "" {
		lines = append(lines, "Duration: "+string(rec.Input.DurationBucket))
	}
	return lines
}

func sections(rec assessment.Record) []section {
	var out []section
	if rec.Result != nil {
		conditions := make([]string, 0, len(rec.Result.PossibleConditions))
		for _, c := range rec.Result.PossibleConditions {
			conditions = append(conditions, fmt.Sprintf("%s (%d%%, %s): %s", c.Title, c.Probability, c.Severity, c.Description))
		}
		out = append(out,
			section{title: "Possible conditions", lines: conditions},
			section{title: "Recommendations", lines: rec.Result.Recommendations},
			section{title: "Specialist", lines: []string{rec.Result.SuggestedSpecialist}},
		)
	}
	if rec.Reply != nil {
		out = append(out, section{title: "Reply sent to patient", lines: strings.Split(rec.Reply.Message, "\n")})
	}
	return out
}

func summaryText(rec assessment.Record) string {
	var b strings.Builder
	b.WriteString("EMERGENCY TRIAGE\n")
	for _, line := range headerLines(rec) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, sec := range sections(rec) {
		if len(sec.lines) == 0 {
			continue
		}
		b.WriteString("\n")
		b.WriteString(sec.title)
		b.WriteString(":\n")
		for _, line := range sec.lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			b.WriteString("- ")
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
