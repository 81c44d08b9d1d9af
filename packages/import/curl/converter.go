// Package curl converts curl invocations into request templates.
package curl

import (
	"encoding/base64"
	"regexp"
	"sort"
	"strings"

	"github.com/satchelhq/satchel/packages/core/fault"
	"github.com/satchelhq/satchel/packages/core/store"
)

// ParsedCommand holds the parts of a curl invocation satchel understands.
// Flags it does not understand are skipped, not rejected.
type ParsedCommand struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// Parse reads a curl command line. The leading "curl" word is optional.
func Parse(command string) (*ParsedCommand, error) {
	parsed := &ParsedCommand{
		Method:  "GET",
		Headers: make(map[string]string),
	}

	command = strings.TrimSpace(command)
	command = strings.TrimPrefix(command, "curl ")
	if command == "curl" || command == "" {
		return nil, fault.Validationf("curl.parse", "no URL in curl command")
	}

	tokens := tokenize(command)

	i := 0
	for i < len(tokens) {
		token := tokens[i]

		switch {
		case token == "-X" || token == "--request":
			if i+1 >= len(tokens) {
				return nil, fault.Validationf("curl.parse", "missing value for %s", token)
			}
			parsed.Method = strings.ToUpper(tokens[i+1])
			i += 2

		case token == "-H" || token == "--header":
			if i+1 >= len(tokens) {
				return nil, fault.Validationf("curl.parse", "missing value for %s", token)
			}
			if key, value, ok := strings.Cut(tokens[i+1], ":"); ok {
				parsed.Headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
			i += 2

		case token == "-d" || token == "--data" || token == "--data-raw" || token == "--data-binary":
			if i+1 >= len(tokens) {
				return nil, fault.Validationf("curl.parse", "missing value for %s", token)
			}
			parsed.Body = tokens[i+1]
			// curl switches to POST when data is given
			if parsed.Method == "GET" {
				parsed.Method = "POST"
			}
			i += 2

		case token == "-u" || token == "--user":
			if i+1 >= len(tokens) {
				return nil, fault.Validationf("curl.parse", "missing value for %s", token)
			}
			cred := base64.StdEncoding.EncodeToString([]byte(tokens[i+1]))
			parsed.Headers["Authorization"] = "Basic " + cred
			i += 2

		case token == "-A" || token == "--user-agent":
			if i+1 >= len(tokens) {
				return nil, fault.Validationf("curl.parse", "missing value for %s", token)
			}
			parsed.Headers["User-Agent"] = tokens[i+1]
			i += 2

		case token == "-e" || token == "--referer":
			if i+1 >= len(tokens) {
				return nil, fault.Validationf("curl.parse", "missing value for %s", token)
			}
			parsed.Headers["Referer"] = tokens[i+1]
			i += 2

		case token == "-b" || token == "--cookie":
			if i+1 >= len(tokens) {
				return nil, fault.Validationf("curl.parse", "missing value for %s", token)
			}
			parsed.Headers["Cookie"] = tokens[i+1]
			i += 2

		case strings.HasPrefix(token, "-"):
			// Unknown flag. Swallow its value when the next token is
			// clearly not a URL or another flag.
			if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
				i += 2
			} else {
				i++
			}

		default:
			if parsed.URL == "" && isURL(token) {
				parsed.URL = token
			}
			i++
		}
	}

	if parsed.URL == "" {
		return nil, fault.Validationf("curl.parse", "no URL in curl command")
	}

	return parsed, nil
}

// Template converts a curl command into a request template. An empty name
// derives one from the method and URL path.
func Template(command, name string) (store.RequestTemplate, error) {
	parsed, err := Parse(command)
	if err != nil {
		return store.RequestTemplate{}, err
	}

	if name == "" {
		name = deriveName(parsed.URL, parsed.Method)
	}

	keys := make([]string, 0, len(parsed.Headers))
	for k := range parsed.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]string, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, k+": "+parsed.Headers[k])
	}

	return store.RequestTemplate{
		Name:    name,
		Method:  parsed.Method,
		URL:     parsed.URL,
		Headers: headers,
		Body:    parsed.Body,
	}, nil
}

// tokenize splits a command into tokens, respecting quotes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			escaped = true
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isURL treats placeholder-led values as URLs so templated hosts survive.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "{{")
}

var pathPattern = regexp.MustCompile(`https?://[^/]+(/[^?#]*)?`)

// deriveName builds a storable name from the URL path and method.
func deriveName(url, method string) string {
	path := "/"
	if matches := pathPattern.FindStringSubmatch(url); len(matches) > 1 && matches[1] != "" {
		path = matches[1]
	}

	path = strings.Trim(path, "/")
	if path == "" {
		path = "root"
	}
	path = strings.ReplaceAll(path, "/", "_")
	path = strings.ReplaceAll(path, "{{", "")
	path = strings.ReplaceAll(path, "}}", "")

	name := strings.ToLower(method) + "_" + path
	if len(name) > 50 {
		name = strings.Trim(name[:50], "_")
	}
	return name
}
