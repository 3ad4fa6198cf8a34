package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cloudmap/cloudmap/internal/models"
)

// RenderJSON writes report to w as indented JSON followed by a newline.
func RenderJSON(w io.Writer, report *models.FindingsReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
