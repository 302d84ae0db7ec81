package participant

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"triad/pkg/transcript"
)

// Persona texts used when no override file is configured.
const (
	AnalystPersona = `You are a Business Analyst which will take the requirements from the user and turn them into a clear, numbered list of requirements for a Software Engineer.
Cover layout, content, styling and behavior. Do not write code yourself.
When the Product Owner asks for fixes, restate which requirements are still unmet.`

	EngineerPersona = `You are a Software Engineer. Implement the Business Analyst's requirements as a single self-contained web page using HTML, CSS and JavaScript.
Always return the complete page inside one fenced block that starts with ` + "```html" + ` and ends with ` + "```" + `.
When the Product Owner reports a defect, return the full corrected page again in the same format.`

	ReviewerPersona = `You are the Product Owner which will review the Software Engineer's code to ensure all user requirements are completed.
You are the guardian of quality. If the Software Engineer provides HTML code that:
1. Matches the user's original requirements, AND
2. Is properly wrapped in the format ` + "```html ...code... ```" + `, THEN
You must reply with ONLY the word: APPROVED.
If the requirements are not met, explain the defect and ask for a fix.`
)

// Personas maps each participant role to its fixed system instructions.
type Personas map[transcript.Role]string

// DefaultPersonas returns the built-in persona set.
func DefaultPersonas() Personas {
	return Personas{
		transcript.RoleAnalyst:  AnalystPersona,
		transcript.RoleEngineer: EngineerPersona,
		transcript.RoleReviewer: ReviewerPersona,
	}
}

// personaFile is the YAML layout of a persona override file:
//
//	analyst: |
//	  You are ...
//	reviewer: |
//	  You are ...
type personaFile map[string]string

// LoadPersonas reads overrides from a YAML file and merges them over the
// defaults. Roles absent from the file keep their default persona. An empty
// path returns the defaults.
func LoadPersonas(path string) (Personas, error) {
	personas := DefaultPersonas()
	if path == "" {
		return personas, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read personas file %s: %w", path, err)
	}

	var file personaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse personas file %s: %w", path, err)
	}

	for key, text := range file {
		role, err := transcript.ParseRole(strings.ToLower(strings.TrimSpace(key)))
		if err != nil {
			return nil, fmt.Errorf("personas file %s: %w", path, err)
		}
		if !role.IsParticipant() {
			return nil, fmt.Errorf("personas file %s: %q is not a participant role", path, key)
		}
		personas[role] = strings.TrimSpace(text)
	}
	if err := personas.Validate(); err != nil {
		return nil, fmt.Errorf("personas file %s: %w", path, err)
	}
	return personas, nil
}

// Validate checks that every participant role has a persona.
func (p Personas) Validate() error {
	var errs []error
	for _, role := range []transcript.Role{transcript.RoleAnalyst, transcript.RoleEngineer, transcript.RoleReviewer} {
		if strings.TrimSpace(p[role]) == "" {
			errs = append(errs, fmt.Errorf("missing persona for %s", role))
		}
	}
	return errors.Join(errs...)
}
