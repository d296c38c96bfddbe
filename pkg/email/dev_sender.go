package email

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type devSender struct {
	outputDir string
}

// NewDevSender creates a sender that writes every message to outputDir
// instead of dispatching it. Each send produces an .html file with the
// body and a .json file with the full parameters.
func NewDevSender(outputDir string) (EmailSender, error) {
	if outputDir == "" {
		return nil, fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: cannot create output directory: %w", ErrInvalidConfig, err)
	}
	return &devSender{outputDir: outputDir}, nil
}

func (s *devSender) SendEmail(_ context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	base := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405.000"), params.Tag)

	htmlPath := filepath.Join(s.outputDir, base+".html")
	if err := os.WriteFile(htmlPath, []byte(params.BodyHTML), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}

	meta, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}
	jsonPath := filepath.Join(s.outputDir, base+".json")
	if err := os.WriteFile(jsonPath, meta, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}
	return nil
}
