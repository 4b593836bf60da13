// Package site holds the static organisation settings rendered around the
// donor data: name, impact figures, donation channels and contact details.
package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// Impact holds the hand-maintained landing page figures.
	Impact struct {
		PeopleHelped      int64 `yaml:"people_helped"`
		ProjectsCompleted int64 `yaml:"projects_completed"`
		Volunteers        int64 `yaml:"volunteers"`
	}

	// Channel is a way to donate with a value visitors can copy.
	Channel struct {
		Label string `yaml:"label"`
		Value string `yaml:"value"`
		Note  string `yaml:"note,omitempty"`
	}

	Settings struct {
		Name     string    `yaml:"name"`
		Tagline  string    `yaml:"tagline"`
		Impact   Impact    `yaml:"impact"`
		Channels []Channel `yaml:"channels"`
		Email    string    `yaml:"contact_email"`
		// ContactAck is shown after the contact form is submitted.
		ContactAck string `yaml:"contact_ack"`
	}
)

// Defaults returns the settings used when no file is present.
func Defaults() Settings {
	return Settings{
		Name:    "Hope Foundation",
		Tagline: "Together we can change lives",
		Impact: Impact{
			PeopleHelped:      5420,
			ProjectsCompleted: 87,
			Volunteers:        234,
		},
		Channels: []Channel{
			{Label: "Bank Account", Value: "1234567890123"},
			{Label: "Mobile Wallet", Value: "01712345678"},
		},
		Email:      "info@hopefoundation.org",
		ContactAck: "Thank you for your message! We will get back to you soon.",
	}
}

// Load reads YAML settings from path. A missing file yields Defaults; fields
// absent from the file keep their default values.
func Load(path string) (Settings, error) {
	s := Defaults()
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read site settings: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(b []byte) (Settings, error) {
	s := Defaults()
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("parse site settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) Validate() error {
	var problems []string
	if strings.TrimSpace(s.Name) == "" {
		problems = append(problems, "name is required")
	}
	if s.Impact.PeopleHelped < 0 || s.Impact.ProjectsCompleted < 0 || s.Impact.Volunteers < 0 {
		problems = append(problems, "impact figures must not be negative")
	}
	for i, c := range s.Channels {
		if strings.TrimSpace(c.Label) == "" || strings.TrimSpace(c.Value) == "" {
			problems = append(problems, fmt.Sprintf("channel %d needs a label and a value", i))
		}
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		problems = append(problems, fmt.Sprintf("invalid contact email %q", s.Email))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid site settings: %s", strings.Join(problems, "; "))
	}
	return nil
}
