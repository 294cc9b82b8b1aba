package render

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/skillforge/skillforge-backend/internal/platform/logger"
)

// CertificateData carries everything the rendered document shows.
type CertificateData struct {
	StudentName       string
	CourseTitle       string
	TeacherName       string
	CertificateNumber string
	VerificationCode  string
	CompletedAt       time.Time
}

type CertificateRenderer interface {
	Render(data CertificateData) ([]byte, error)
}

const (
	certWidth  = 1600
	certHeight = 1131
)

type certificateRenderer struct {
	log *logger.Logger

	titleFace  font.Face
	nameFace   font.Face
	bodyFace   font.Face
	detailFace font.Face
}

// NewCertificateRenderer loads the TTF named by CERTIFICATE_FONT at the
// sizes the layout needs. Callers may run without a renderer; certificates
// are then issued without a rendered file.
func NewCertificateRenderer(log *logger.Logger) (CertificateRenderer, error) {
	rendererLog := log.With("renderer", "CertificateRenderer")

	fontPath := strings.TrimSpace(os.Getenv("CERTIFICATE_FONT"))
	if fontPath == "" {
		return nil, fmt.Errorf("env var CERTIFICATE_FONT is empty")
	}
	rendererLog.Info("Loading certificate font", "font", fontPath)

	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("read certificate font: %w", err)
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse certificate font: %w", err)
	}

	face := func(size float64) font.Face {
		return truetype.NewFace(parsed, &truetype.Options{Size: size})
	}

	return &certificateRenderer{
		log:        rendererLog,
		titleFace:  face(64),
		nameFace:   face(88),
		bodyFace:   face(36),
		detailFace: face(24),
	}, nil
}

func (r *certificateRenderer) Render(data CertificateData) ([]byte, error) {
	dc := gg.NewContext(certWidth, certHeight)

	dc.SetRGB(0.98, 0.97, 0.94)
	dc.Clear()

	// Double border
	dc.SetRGB(0.13, 0.23, 0.42)
	dc.SetLineWidth(10)
	dc.DrawRectangle(40, 40, certWidth-80, certHeight-80)
	dc.Stroke()
	dc.SetLineWidth(2)
	dc.DrawRectangle(60, 60, certWidth-120, certHeight-120)
	dc.Stroke()

	cx := float64(certWidth) / 2

	dc.SetFontFace(r.titleFace)
	dc.SetRGB(0.13, 0.23, 0.42)
	dc.DrawStringAnchored("Certificate of Completion", cx, 200, 0.5, 0.5)

	dc.SetFontFace(r.bodyFace)
	dc.SetRGB(0.25, 0.25, 0.25)
	dc.DrawStringAnchored("This certifies that", cx, 330, 0.5, 0.5)

	dc.SetFontFace(r.nameFace)
	dc.SetRGB(0.05, 0.05, 0.05)
	dc.DrawStringAnchored(data.StudentName, cx, 450, 0.5, 0.5)

	dc.SetFontFace(r.bodyFace)
	dc.SetRGB(0.25, 0.25, 0.25)
	dc.DrawStringAnchored("has successfully completed the course", cx, 560, 0.5, 0.5)

	dc.SetRGB(0.05, 0.05, 0.05)
	dc.DrawStringAnchored(data.CourseTitle, cx, 650, 0.5, 0.5)

	dc.SetRGB(0.25, 0.25, 0.25)
	dc.DrawStringAnchored(
		fmt.Sprintf("Completed on %s", data.CompletedAt.Format("January 2, 2006")),
		cx, 760, 0.5, 0.5)
	if data.TeacherName != "" {
		dc.DrawStringAnchored(fmt.Sprintf("Instructor: %s", data.TeacherName), cx, 830, 0.5, 0.5)
	}

	dc.SetFontFace(r.detailFace)
	dc.SetRGB(0.4, 0.4, 0.4)
	dc.DrawStringAnchored(data.CertificateNumber, cx, 980, 0.5, 0.5)
	dc.DrawStringAnchored(
		fmt.Sprintf("Verify with code %s", data.VerificationCode),
		cx, 1020, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode certificate png: %w", err)
	}
	return buf.Bytes(), nil
}
