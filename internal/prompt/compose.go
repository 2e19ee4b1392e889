// Package prompt turns a DesignRequest into the two messages sent to the
// text-completion service. Nothing here touches the network.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/krestly/crest-server/internal/models"
)

// Mode selects how strictly design fields are required.
type Mode string

const (
	// ModeLenient accepts any subset of fields, including none.
	ModeLenient Mode = "lenient"
	// ModeStrict requires all five fields.
	ModeStrict Mode = "strict"
)

// Fallback is the user text sent when a lenient request carries no fields at all.
const Fallback = "Design a general family crest using any artistic freedom."

const systemPreamble = `Create an image generation prompt for a modern embroidery-safe family crest.
- Use only bold, solid shapes (no gradients)
- Keep the layout symmetrical and centered
- Limit to 2 harmonious thread-safe colours
- Composition should be square, circular, or open badge-style
`

// field is one labeled line of the user message. Order matters.
type field struct {
	key   string // JSON name, used in validation messages
	label string
	value func(models.DesignRequest) string
}

var fields = []field{
	{key: "name", label: "Name", value: func(r models.DesignRequest) string { return r.Name }},
	{key: "symbols", label: "Elements", value: func(r models.DesignRequest) string { return r.Symbols }},
	{key: "colors", label: "Colors", value: func(r models.DesignRequest) string { return r.Colors }},
	{key: "vibe", label: "Vibe", value: func(r models.DesignRequest) string { return r.Vibe }},
	{key: "style", label: "Style", value: func(r models.DesignRequest) string { return r.Style }},
}

// Compose builds the system and user messages for req. req should already be
// normalized and validated for the same mode.
func Compose(req models.DesignRequest, mode Mode) (systemText, userText string) {
	var sb strings.Builder
	sb.WriteString(systemPreamble)
	if req.Name != "" {
		fmt.Fprintf(&sb, "- Include the name %q in the image as the only text\n", req.Name)
	} else {
		sb.WriteString("- No name was given: do not include any text at all\n")
	}
	sb.WriteString("Return ONLY the image prompt, no explanations.")

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if v := f.value(req); v != "" {
			lines = append(lines, f.label+": "+v)
		}
	}
	if len(lines) == 0 && mode != ModeStrict {
		return sb.String(), Fallback
	}
	return sb.String(), strings.Join(lines, "\n")
}

// FieldError describes why a DesignRequest was rejected.
type FieldError struct {
	Missing []string // strict mode only
	TooLong []string
	Limit   int
}

func (e *FieldError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.TooLong) > 0 {
		parts = append(parts, fmt.Sprintf("fields longer than %d characters: %s", e.Limit, strings.Join(e.TooLong, ", ")))
	}
	return strings.Join(parts, "; ")
}

// Validate checks req against mode and the per-field rune limit. A nil error
// means Compose can be called. maxFieldLength <= 0 disables the length check.
func Validate(req models.DesignRequest, mode Mode, maxFieldLength int) error {
	fe := &FieldError{Limit: maxFieldLength}
	for _, f := range fields {
		v := f.value(req)
		if v == "" {
			if mode == ModeStrict {
				fe.Missing = append(fe.Missing, f.key)
			}
			continue
		}
		if maxFieldLength > 0 && utf8.RuneCountInString(v) > maxFieldLength {
			fe.TooLong = append(fe.TooLong, f.key)
		}
	}
	if len(fe.Missing) == 0 && len(fe.TooLong) == 0 {
		return nil
	}
	return fe
}

// Presence reports which fields of req carry a value, keyed by JSON name.
func Presence(req models.DesignRequest) map[string]bool {
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		out[f.key] = f.value(req) != ""
	}
	return out
}
