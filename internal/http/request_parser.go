package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"charity/internal/controller"
	"charity/internal/core"
	"charity/internal/view"
)

const (
	maxSearchLength  = 100
	maxContactBody   = 16 << 10
	maxContactFields = 2000
)

// ErrInvalidContact is returned when a contact submission fails validation.
var ErrInvalidContact = errors.New("invalid contact message")

// ParseGridQuery reads sort and q from the query string. An unknown sort key
// falls back to input order and is reported so the caller can log it.
func ParseGridQuery(query url.Values) (view.GridQuery, error) {
	search := sanitizeInput(query.Get("q"))
	if utf8.RuneCountInString(search) > maxSearchLength {
		search = string([]rune(search)[:maxSearchLength])
	}
	key, err := core.ParseSortKey(strings.TrimSpace(query.Get("sort")))
	if err != nil {
		return view.GridQuery{Sort: core.SortNone, Search: search}, err
	}
	return view.GridQuery{Sort: key, Search: search}, nil
}

// ParsePage validates the page parameter of the counter stream.
func ParsePage(query url.Values) (string, error) {
	page := strings.TrimSpace(query.Get("page"))
	switch page {
	case controller.PageLanding, controller.PageDonors:
		return page, nil
	case "":
		return controller.PageLanding, nil
	}
	return "", fmt.Errorf("unknown page %q", page)
}

// ContactMessage is a submission of the contact form. It is acknowledged and
// logged, never stored.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

// Validate checks required fields and lengths.
func (m ContactMessage) Validate() error {
	var problems []string
	if m.Name == "" {
		problems = append(problems, "name is required")
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		problems = append(problems, "a valid email is required")
	}
	if m.Message == "" {
		problems = append(problems, "message is required")
	}
	for _, f := range []string{m.Name, m.Email, m.Message} {
		if utf8.RuneCountInString(f) > maxContactFields {
			problems = append(problems, "fields must be shorter than "+strconv.Itoa(maxContactFields)+" characters")
			break
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidContact, strings.Join(problems, ", "))
	}
	return nil
}

// ParseContact reads a contact submission encoded as a form or as JSON.
func ParseContact(r *http.Request) (ContactMessage, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxContactBody)
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return ContactMessage{}, err
	}
	return ContactMessage{
		Name:    p.Get("name"),
		Email:   p.Get("email"),
		Message: p.Get("message"),
	}, nil
}

// RequestBodyParser handles both JSON and form-encoded request bodies,
// the two encodings htmx and fetch send.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and keeps it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitised string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
