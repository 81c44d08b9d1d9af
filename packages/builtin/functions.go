package builtin

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Func produces a value from string arguments. Implementations are lenient:
// bad or missing arguments fall back to defaults rather than failing, so a
// placeholder never aborts an interpolation.
type Func func(args []string) any

// Registry maps function names to implementations. The zero registry is not
// usable; NewRegistry installs the defaults.
type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["now"] = funcNow
	r.funcs["timestamp"] = funcTimestamp
	r.funcs["timestampMs"] = funcTimestampMs
	r.funcs["uuid"] = funcUUID
	r.funcs["randomInt"] = funcRandomInt
	r.funcs["randomString"] = funcRandomString
	r.funcs["randomEmail"] = funcRandomEmail
	r.funcs["base64"] = funcBase64
	r.funcs["base64Decode"] = funcBase64Decode
	r.funcs["sha256"] = funcSHA256
	r.funcs["urlEncode"] = funcURLEncode
	r.funcs["urlDecode"] = funcURLDecode
	r.funcs["date"] = funcDate
}

// Register adds or overrides a function. Tests use it to install
// deterministic implementations.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// Call evaluates expr when it looks like name(args) and names a registered
// function. The second return is false when expr is not a call or the
// function is unknown; callers treat that like any other unresolved
// placeholder.
func (r *Registry) Call(expr string) (any, bool) {
	matches := funcCallPattern.FindStringSubmatch(expr)
	if matches == nil {
		return nil, false
	}

	fn, ok := r.funcs[matches[1]]
	if !ok {
		return nil, false
	}

	var args []string
	if matches[2] != "" {
		args = parseArgs(matches[2])
	}
	return fn(args), true
}

// parseArgs splits on commas outside single or double quotes and trims the
// pieces. Quote characters themselves are dropped.
func parseArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case !inQuote && (ch == '"' || ch == '\''):
			inQuote = true
			quoteChar = ch
		case inQuote && ch == quoteChar:
			inQuote = false
			quoteChar = 0
		case !inQuote && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}
	return args
}

func funcNow(_ []string) any {
	return time.Now().UTC().Format(time.RFC3339)
}

func funcTimestamp(_ []string) any {
	return time.Now().Unix()
}

func funcTimestampMs(_ []string) any {
	return time.Now().UnixMilli()
}

func funcUUID(_ []string) any {
	return uuid.New().String()
}

func funcRandomInt(args []string) any {
	lo, hi := 0, 100
	if len(args) >= 2 {
		if v, err := strconv.Atoi(args[0]); err == nil {
			lo = v
		}
		if v, err := strconv.Atoi(args[1]); err == nil {
			hi = v
		}
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return rand.Intn(hi-lo+1) + lo
}

func funcRandomString(args []string) any {
	length := 16
	if len(args) >= 1 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			length = v
		}
	}
	return randomString(length, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
}

func funcRandomEmail(_ []string) any {
	user := randomString(8, "abcdefghijklmnopqrstuvwxyz")
	domain := randomString(6, "abcdefghijklmnopqrstuvwxyz")
	return fmt.Sprintf("%s@%s.com", user, domain)
}

func funcBase64(args []string) any {
	if len(args) < 1 {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(args[0]))
}

func funcBase64Decode(args []string) any {
	if len(args) < 1 {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(args[0])
	if err != nil {
		return ""
	}
	return string(decoded)
}

func funcSHA256(args []string) any {
	if len(args) < 1 {
		return ""
	}
	hash := sha256.Sum256([]byte(args[0]))
	return hex.EncodeToString(hash[:])
}

func funcURLEncode(args []string) any {
	if len(args) < 1 {
		return ""
	}
	return url.QueryEscape(args[0])
}

func funcURLDecode(args []string) any {
	if len(args) < 1 {
		return ""
	}
	decoded, err := url.QueryUnescape(args[0])
	if err != nil {
		return args[0]
	}
	return decoded
}

func funcDate(args []string) any {
	layout := "2006-01-02"
	if len(args) >= 1 {
		layout = args[0]
	}
	return time.Now().UTC().Format(layout)
}

func randomString(length int, charset string) string {
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
